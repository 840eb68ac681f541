package session

import "github.com/yumyai/snpview/pkg/model"

// Phase is the explicit state of the session's trigger-processing
// machine.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseValidating           Phase = "validating"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseRendering            Phase = "rendering"
	PhaseDone                 Phase = "done"
)

// State is the per-session mutable record: the current query window,
// the render memory (last accepted click x), and the validated flag
// gating rendering. Owned by the session's worker goroutine; no other
// session can ever reach it.
type State struct {
	chromosome string
	flank      int64
	position   int64
	lastClickX int64
	hasClick   bool
	validated  bool
	phase      Phase
}

func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset runs once at session creation, before any trigger is
// processed, so a fresh session never renders from stale state.
func (s *State) Reset() {
	s.chromosome = ""
	s.flank = 0
	s.position = 0
	s.lastClickX = 0
	s.hasClick = false
	s.validated = false
	s.phase = PhaseIdle
}

func (s *State) SetQuery(chromosome string, flank, position int64) {
	s.chromosome = chromosome
	s.flank = flank
	s.position = position
}

func (s *State) HasQuery() bool {
	return s.chromosome != ""
}

func (s *State) CurrentQuery() model.Query {
	q := model.Query{
		Chromosome: s.chromosome,
		Position:   s.position,
		Flank:      s.flank,
	}
	q.RawText = q.Locus()
	return q
}

func (s *State) SetClickMemory(x int64) {
	s.lastClickX = x
	s.hasClick = true
}

// ClickMemory returns the last accepted click x-coordinate; the second
// return is false before the first accepted click.
func (s *State) ClickMemory() (int64, bool) {
	return s.lastClickX, s.hasClick
}

func (s *State) MarkValidated(v bool) {
	s.validated = v
}

func (s *State) IsValidated() bool {
	return s.validated
}

func (s *State) SetPhase(p Phase) {
	s.phase = p
}

func (s *State) Phase() Phase {
	return s.phase
}
