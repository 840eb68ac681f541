// Pre-render validation of a canonical query against the reference
// index and the session's uploaded files.

package model

import (
	"fmt"
)

// ContigIndex resolves contig names to their lengths in the active
// reference genome. Backed by pkg/db in production.
type ContigIndex interface {
	ContigLength(name string) (int64, bool, error)
}

// ValidationResult is the verdict of one full validator run. Reasons
// holds one message per failed check, in check order.
type ValidationResult struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

type ValidatorConfig struct {
	MaxFlank      int64
	RequiredRoles []FileRole
}

func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MaxFlank:      100000,
		RequiredRoles: []FileRole{RoleReference, RolePeaks, RoleSignal},
	}
}

type Validator struct {
	Contigs ContigIndex
	Config  ValidatorConfig
}

// Validate runs the full check battery. It never short-circuits: every
// check runs regardless of earlier failures so the user sees all
// problems in one pass.
func (v *Validator) Validate(q Query, files *FileSet) ValidationResult {

	var reasons []string

	// 1. Chromosome must be a known contig.
	contigLen, known, err := v.Contigs.ContigLength(q.Chromosome)
	if err != nil {
		known = false
		reasons = append(reasons, fmt.Sprintf("reference index lookup failed: %v", err))
	} else if !known {
		reasons = append(reasons, fmt.Sprintf("unknown chromosome %q", q.Chromosome))
	}

	// 2. Position must leave room for the flank window on both sides.
	// Only evaluable when the contig resolved.
	if known {
		if q.Position < 1 || q.Position > contigLen-q.Flank {
			reasons = append(reasons, fmt.Sprintf(
				"position %d outside [1, %d] on %s (contig length %d, flank %d)",
				q.Position, contigLen-q.Flank, q.Chromosome, contigLen, q.Flank))
		}
	}

	// 3. Flank must be within the configured maximum.
	if q.Flank > v.Config.MaxFlank {
		reasons = append(reasons, fmt.Sprintf(
			"flank %d exceeds maximum %d", q.Flank, v.Config.MaxFlank))
	}

	// 4. Every required role must be present and parsed.
	for _, role := range v.Config.RequiredRoles {
		f, ok := files.Get(role)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("missing required %s file", role))
			continue
		}
		if !f.Parsed {
			reasons = append(reasons, fmt.Sprintf("%s file %s could not be parsed", role, f.Path))
		}
	}

	// 5. Files declaring a range must overlap the query window.
	for _, f := range files.All() {
		if f.Chrom == "" {
			continue
		}
		if f.Chrom != q.Chromosome || f.End < q.WindowStart() || f.Start > q.WindowEnd() {
			reasons = append(reasons, fmt.Sprintf(
				"%s file covers %s:%d-%d, outside query window %s:%d-%d",
				f.Role, f.Chrom, f.Start, f.End,
				q.Chromosome, q.WindowStart(), q.WindowEnd()))
		}
	}

	return ValidationResult{
		Passed:  len(reasons) == 0,
		Reasons: reasons,
	}
}
