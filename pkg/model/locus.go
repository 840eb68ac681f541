// Locus query parsing. Pure; no DB or file access here.

package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Query is a canonical locus request: chromosome, 1-based position and
// the flank extended symmetrically around the position. A Query is
// never mutated after construction; a new click builds a new one.
type Query struct {
	RawText    string `json:"raw_text"`
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Flank      int64  `json:"flank"`
}

// Locus renders the query back into the chrom:pos form the UI displays.
func (q Query) Locus() string {
	return fmt.Sprintf("%s:%d", q.Chromosome, q.Position)
}

func (q Query) WindowStart() int64 {
	start := q.Position - q.Flank
	if start < 1 {
		start = 1
	}
	return start
}

func (q Query) WindowEnd() int64 {
	return q.Position + q.Flank
}

// ParseError reports malformed locus or flank text. It terminates the
// trigger before any validation runs.
type ParseError struct {
	Field string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// chrom token, colon, integer position. e.g. "chr1:50000"
var locusPattern = regexp.MustCompile(`^([A-Za-z0-9_.]+):([0-9]+)$`)

// ParseLocus canonicalizes the raw search box and flank field values.
func ParseLocus(rawText, flankText string) (Query, error) {

	locus := strings.TrimSpace(rawText)

	m := locusPattern.FindStringSubmatch(locus)
	if m == nil {
		return Query{}, &ParseError{Field: "locus", Msg: "malformed locus syntax"}
	}

	position, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Query{}, &ParseError{Field: "locus", Msg: "malformed locus syntax"}
	}

	flank, err := strconv.ParseInt(strings.TrimSpace(flankText), 10, 64)
	if err != nil || flank < 0 {
		return Query{}, &ParseError{Field: "flank", Msg: "invalid flank"}
	}

	return Query{
		RawText:    rawText,
		Chromosome: m[1],
		Position:   position,
		Flank:      flank,
	}, nil
}
