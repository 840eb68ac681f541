// Plot click interpretation: turning plot coordinates back into a
// candidate query.

package session

import (
	"math"

	"github.com/yumyai/snpview/pkg/model"
)

// ClickEvent is a click inside a rendered plot. X is the genomic
// position under the cursor; Y is only used to tell data points from
// axis labels and annotation lanes.
type ClickEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InterpretClick decides whether a click should propose a re-centered
// query. Returns false for a nil event (click cleared), for clicks on
// non-data plot elements, and for a repeat of the click currently held
// in render memory - none of those touch the session.
//
// An accepted click latches its x into render memory before the user
// confirms anything, which is what suppresses duplicate prompts from
// repeated identical clicks.
func InterpretClick(ev *ClickEvent, st *State) (model.Query, bool) {

	if ev == nil {
		return model.Query{}, false
	}

	// Nothing rendered yet; there is no plot to have clicked.
	if !st.HasQuery() {
		return model.Query{}, false
	}

	// Integer y-values are category axis labels, not signal values.
	if ev.Y == math.Trunc(ev.Y) {
		return model.Query{}, false
	}

	x := int64(math.Round(ev.X))

	if last, ok := st.ClickMemory(); ok && last == x {
		return model.Query{}, false
	}

	st.SetClickMemory(x)

	current := st.CurrentQuery()
	q := model.Query{
		Chromosome: current.Chromosome,
		Position:   x,
		Flank:      current.Flank,
	}
	q.RawText = q.Locus()

	return q, true
}
