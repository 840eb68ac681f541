// Session event loop. Each session owns a single-consumer queue, so
// trigger processing is strictly sequential: at most one render is in
// flight and a later trigger waits behind the current one.

package session

import (
	"errors"

	"github.com/yumyai/snpview/logger"
	"github.com/yumyai/snpview/pkg/model"
	"github.com/yumyai/snpview/pkg/render"
	"go.uber.org/zap"
)

var (
	ErrClosed = errors.New("session closed")

	// Returned for button/click triggers that arrive while a
	// confirmation prompt is pending. The machine has no transition
	// for them, and silently queueing would let a stale trigger fire
	// after an unrelated confirmation.
	ErrBusyConfirming = errors.New("confirmation pending")
)

// Downloader delivers the currently rendered artifacts when the user
// declines a click-triggered re-render.
type Downloader interface {
	Deliver(sessionID string, artifacts []render.Artifact) error
}

// ResultKind tells the caller what a submitted event produced.
type ResultKind string

const (
	ResultOutcome     ResultKind = "outcome"  // a render trigger ran; see Outcome
	ResultIgnored     ResultKind = "ignored"  // event dropped without entering the cycle
	ResultAwaiting    ResultKind = "awaiting" // click accepted, confirmation pending
	ResultRevalidated ResultKind = "revalidated"
	ResultSnapshot    ResultKind = "snapshot"
)

type Result struct {
	Kind     ResultKind
	Outcome  *render.Outcome
	Proposed string // proposed locus while awaiting confirmation
	Reasons  []string
	Message  string
	Snapshot Snapshot
}

// Snapshot is a read-only copy of the session for the UI layer.
type Snapshot struct {
	ID        string
	Phase     Phase
	Validated bool
	HasQuery  bool
	Locus     string
	Flank     int64
	ClickX    int64
	HasClick  bool
	Proposed  string
	Reasons   []string
	LastError string
	Artifacts []render.Artifact
}

type eventKind int

const (
	evButton eventKind = iota
	evClick
	evConfirm
	evFileChange
	evSnapshot
)

type event struct {
	kind   eventKind
	query  model.Query
	click  *ClickEvent
	accept bool
	file   model.UploadedFile
	reply  chan result
}

type result struct {
	res Result
	err error
}

// Session processes one user's triggers in order. All fields below
// events are owned by the worker goroutine.
type Session struct {
	ID string

	events chan event
	done   chan struct{}

	state      *State
	files      *model.FileSet
	coord      *render.Coordinator
	downloader Downloader

	pending       *model.Query // click query awaiting confirmation
	lastReasons   []string
	lastError     string // pipeline error from the most recent trigger
	lastArtifacts []render.Artifact
}

const eventQueueSize = 16

func newSession(id string, validator *model.Validator, pipeline render.Pipeline, downloader Downloader) *Session {

	s := &Session{
		ID:         id,
		events:     make(chan event, eventQueueSize),
		done:       make(chan struct{}),
		state:      NewState(),
		files:      model.NewFileSet(),
		downloader: downloader,
	}

	s.coord = &render.Coordinator{
		Validator: validator,
		Pipeline:  pipeline,
		OnStart: func(q model.Query) {
			s.state.SetPhase(PhaseRendering)
			logger.Info("Render starting",
				zap.String("session", s.ID),
				zap.String("locus", q.Locus()),
			)
		},
	}

	go s.loop()
	return s
}

// PressButton is the "Render" button trigger. The query has already
// been canonicalized by model.ParseLocus at the trigger point.
func (s *Session) PressButton(q model.Query) (Result, error) {
	return s.submit(event{kind: evButton, query: q})
}

// Click is a plot click trigger; ev may be nil when the click was
// cleared.
func (s *Session) Click(ev *ClickEvent) (Result, error) {
	return s.submit(event{kind: evClick, click: ev})
}

// Confirm answers the pending re-center confirmation.
func (s *Session) Confirm(accept bool) (Result, error) {
	return s.submit(event{kind: evConfirm, accept: accept})
}

// RegisterFile records an upload-collaborator notification and
// opportunistically re-validates; it never renders.
func (s *Session) RegisterFile(f model.UploadedFile) (Result, error) {
	return s.submit(event{kind: evFileChange, file: f})
}

func (s *Session) Snapshot() (Snapshot, error) {
	r, err := s.submit(event{kind: evSnapshot})
	return r.Snapshot, err
}

// Close stops the worker. Pending events get ErrClosed.
func (s *Session) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Session) submit(ev event) (Result, error) {
	ev.reply = make(chan result, 1)

	select {
	case s.events <- ev:
	case <-s.done:
		return Result{}, ErrClosed
	}

	select {
	case r := <-ev.reply:
		return r.res, r.err
	case <-s.done:
		return Result{}, ErrClosed
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			res, err := s.handle(ev)
			ev.reply <- result{res: res, err: err}
		}
	}
}

func (s *Session) handle(ev event) (Result, error) {

	switch ev.kind {

	case evSnapshot:
		return Result{Kind: ResultSnapshot, Snapshot: s.snapshot()}, nil

	case evButton:
		if s.state.Phase() == PhaseAwaitingConfirmation {
			return Result{}, ErrBusyConfirming
		}
		return s.runRender(render.Request{Query: ev.query, Source: render.SourceButton}), nil

	case evClick:
		if s.state.Phase() == PhaseAwaitingConfirmation {
			return Result{}, ErrBusyConfirming
		}
		q, ok := InterpretClick(ev.click, s.state)
		if !ok {
			return Result{Kind: ResultIgnored}, nil
		}
		s.pending = &q
		s.state.SetPhase(PhaseAwaitingConfirmation)
		logger.Info("Click proposes re-center",
			zap.String("session", s.ID),
			zap.String("proposed", q.Locus()),
		)
		return Result{Kind: ResultAwaiting, Proposed: q.Locus()}, nil

	case evConfirm:
		if s.state.Phase() != PhaseAwaitingConfirmation || s.pending == nil {
			return Result{Kind: ResultIgnored, Message: "no confirmation pending"}, nil
		}
		q := *s.pending
		s.pending = nil

		if !ev.accept {
			logger.Info("Re-center declined, delivering current results",
				zap.String("session", s.ID),
				zap.String("declined", q.Locus()),
			)
			s.state.SetPhase(PhaseDone)
			if err := s.downloader.Deliver(s.ID, s.lastArtifacts); err != nil {
				logger.Error("Download delivery failed",
					zap.String("session", s.ID),
					zap.Error(err),
				)
				return Result{Kind: ResultIgnored, Message: "download failed: " + err.Error()}, nil
			}
			return Result{Kind: ResultIgnored, Message: "declined; current results delivered"}, nil
		}

		return s.runRender(render.Request{Query: q, Source: render.SourceClick}), nil

	case evFileChange:
		s.files.Put(ev.file)
		if !s.state.HasQuery() {
			return Result{Kind: ResultIgnored, Message: "file registered"}, nil
		}
		// Refresh the verdict for the current query; rendering stays
		// strictly user-triggered.
		res := s.coord.Validator.Validate(s.state.CurrentQuery(), s.files)
		s.state.MarkValidated(res.Passed)
		s.lastReasons = res.Reasons
		return Result{Kind: ResultRevalidated, Reasons: res.Reasons}, nil
	}

	return Result{Kind: ResultIgnored}, nil
}

func (s *Session) runRender(req render.Request) Result {

	s.state.SetPhase(PhaseValidating)

	out := s.coord.HandleTrigger(req, s.files, s.state)

	switch out.Status {
	case render.StatusRejected:
		s.state.SetPhase(PhaseIdle)
		s.lastReasons = out.Reasons
		s.lastError = ""
	case render.StatusFailed:
		// The query was valid; reasons from an earlier rejection no
		// longer apply. Keep the pipeline error for the status page,
		// distinct from validation reasons.
		s.state.SetPhase(PhaseDone)
		s.lastReasons = nil
		s.lastError = out.Err.Error()
	case render.StatusRendered:
		s.state.SetPhase(PhaseDone)
		s.lastReasons = nil
		s.lastError = ""
		s.lastArtifacts = out.Artifacts
	}

	return Result{Kind: ResultOutcome, Outcome: &out, Reasons: out.Reasons}
}

func (s *Session) snapshot() Snapshot {

	snap := Snapshot{
		ID:        s.ID,
		Phase:     s.state.Phase(),
		Validated: s.state.IsValidated(),
		HasQuery:  s.state.HasQuery(),
		Reasons:   append([]string(nil), s.lastReasons...),
		LastError: s.lastError,
		Artifacts: append([]render.Artifact(nil), s.lastArtifacts...),
	}

	if snap.HasQuery {
		q := s.state.CurrentQuery()
		snap.Locus = q.Locus()
		snap.Flank = q.Flank
	}
	if x, ok := s.state.ClickMemory(); ok {
		snap.ClickX = x
		snap.HasClick = true
	}
	if s.pending != nil {
		snap.Proposed = s.pending.Locus()
	}

	return snap
}
