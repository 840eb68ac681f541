package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumyai/snpview/pkg/model"
	"github.com/yumyai/snpview/pkg/render"
)

type fakeContigs map[string]int64

func (f fakeContigs) ContigLength(name string) (int64, bool, error) {
	length, ok := f[name]
	return length, ok, nil
}

type fakePipeline struct {
	calls int
	fail  bool
}

func (p *fakePipeline) Render(q model.Query, files *model.FileSet) ([]render.Artifact, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("plotting crashed")
	}
	return []render.Artifact{{Name: "logo_" + q.Locus() + ".png", Path: "/tmp/logo.png"}}, nil
}

type fakeDownloader struct {
	calls     int
	delivered []render.Artifact
}

func (d *fakeDownloader) Deliver(sessionID string, artifacts []render.Artifact) error {
	d.calls++
	d.delivered = artifacts
	return nil
}

func testManager(pipeline render.Pipeline, downloader Downloader) *Manager {
	return NewManager(Config{
		Validator: &model.Validator{
			Contigs: fakeContigs{"chr1": 248_956_422},
			Config:  model.DefaultValidatorConfig(),
		},
		Pipeline:   pipeline,
		Downloader: downloader,
	})
}

func registerCompleteFiles(t *testing.T, s *Session) {
	t.Helper()
	for _, f := range []model.UploadedFile{
		{Role: model.RoleReference, Path: "/data/ref.fa", Format: "fasta", Parsed: true},
		{Role: model.RolePeaks, Path: "/data/peaks.bed", Format: "bed", Parsed: true},
		{Role: model.RoleSignal, Path: "/data/mpra.tsv", Format: "tsv", Parsed: true},
	} {
		_, err := s.RegisterFile(f)
		require.NoError(t, err)
	}
}

// Scenario: a valid button trigger renders end to end.
func TestButtonTriggerRenders(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)

	res, err := s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, ResultOutcome, res.Kind)
	require.Equal(t, render.StatusRendered, res.Outcome.Status)
	assert.Equal(t, 1, pipe.calls)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, snap.Phase)
	assert.True(t, snap.Validated)
	assert.Equal(t, "chr1:50000", snap.Locus)
	assert.Equal(t, int64(1000), snap.Flank)
	assert.Len(t, snap.Artifacts, 1)
}

// Scenario: an unknown contig is rejected before the pipeline runs.
func TestButtonTriggerUnknownContig(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chrZZ:50000", "1000")
	require.NoError(t, err)

	res, err := s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, ResultOutcome, res.Kind)
	require.Equal(t, render.StatusRejected, res.Outcome.Status)
	assert.Contains(t, strings.Join(res.Outcome.Reasons, "\n"), "unknown chromosome")
	assert.Equal(t, 0, pipe.calls)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.False(t, snap.Validated)
	assert.Equal(t, PhaseIdle, snap.Phase)
}

// Scenario: click at x=75000 proposes a re-center; accepting
// re-validates and renders.
func TestClickConfirmAcceptRenders(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)
	_, err = s.PressButton(q)
	require.NoError(t, err)

	res, err := s.Click(&ClickEvent{X: 75000, Y: 0.5})
	require.NoError(t, err)
	require.Equal(t, ResultAwaiting, res.Kind)
	assert.Equal(t, "chr1:75000", res.Proposed)

	res, err = s.Confirm(true)
	require.NoError(t, err)
	require.Equal(t, ResultOutcome, res.Kind)
	require.Equal(t, render.StatusRendered, res.Outcome.Status)
	assert.Equal(t, 2, pipe.calls)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "chr1:75000", snap.Locus)
	assert.Equal(t, int64(1000), snap.Flank)
	assert.Equal(t, int64(75000), snap.ClickX)
}

// Scenario: declining the confirmation delivers the current artifacts
// instead; render memory keeps the declined x.
func TestClickConfirmDeclineDownloads(t *testing.T) {

	pipe := &fakePipeline{}
	down := &fakeDownloader{}
	m := testManager(pipe, down)
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)
	_, err = s.PressButton(q)
	require.NoError(t, err)

	_, err = s.Click(&ClickEvent{X: 75000, Y: 0.5})
	require.NoError(t, err)

	res, err := s.Confirm(false)
	require.NoError(t, err)
	require.Equal(t, ResultIgnored, res.Kind)

	assert.Equal(t, 1, pipe.calls, "decline must not re-render")
	assert.Equal(t, 1, down.calls)
	require.Len(t, down.delivered, 1)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(75000), snap.ClickX, "render memory keeps the declined x")
	assert.Equal(t, "chr1:50000", snap.Locus, "query window unchanged")
}

func TestDuplicateClickIgnored(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)
	_, err = s.PressButton(q)
	require.NoError(t, err)

	_, err = s.Click(&ClickEvent{X: 100, Y: 0.5})
	require.NoError(t, err)
	_, err = s.Confirm(true)
	require.NoError(t, err)

	res, err := s.Click(&ClickEvent{X: 100, Y: 0.5})
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.ClickX)
	assert.True(t, snap.Validated)
}

// Triggers arriving while a confirmation is pending are refused with a
// distinct error instead of being queued.
func TestTriggersRefusedWhileConfirming(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)
	_, err = s.PressButton(q)
	require.NoError(t, err)

	_, err = s.Click(&ClickEvent{X: 75000, Y: 0.5})
	require.NoError(t, err)

	_, err = s.PressButton(q)
	assert.ErrorIs(t, err, ErrBusyConfirming)

	_, err = s.Click(&ClickEvent{X: 80000, Y: 0.5})
	assert.ErrorIs(t, err, ErrBusyConfirming)

	// The pending confirmation still resolves normally.
	res, err := s.Confirm(true)
	require.NoError(t, err)
	assert.Equal(t, render.StatusRendered, res.Outcome.Status)
}

func TestConfirmWithoutPendingIsIgnored(t *testing.T) {

	m := testManager(&fakePipeline{}, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	res, err := s.Confirm(true)
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res.Kind)
}

// A render failure keeps the session usable and validated.
func TestRenderFailureKeepsValidated(t *testing.T) {

	pipe := &fakePipeline{fail: true}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	registerCompleteFiles(t, s)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)

	res, err := s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, render.StatusFailed, res.Outcome.Status)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Validated, "only the render step failed")

	// The session keeps processing triggers.
	pipe.fail = false
	res, err = s.PressButton(q)
	require.NoError(t, err)
	assert.Equal(t, render.StatusRendered, res.Outcome.Status)
}

// A failed render after an earlier rejection must not keep showing the
// rejection's reasons: the query is valid now, and the pipeline error
// is what the snapshot reports.
func TestFailedRenderClearsStaleReasons(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)

	// First trigger: rejected, no files registered yet.
	res, err := s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, render.StatusRejected, res.Outcome.Status)

	// Files arrive, then the pipeline itself fails.
	registerCompleteFiles(t, s)
	pipe.fail = true

	res, err = s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, render.StatusFailed, res.Outcome.Status)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Validated)
	assert.Empty(t, snap.Reasons, "rejection reasons must not survive a valid-query render failure")
	assert.Contains(t, snap.LastError, "plotting crashed")

	// A successful render clears the error again.
	pipe.fail = false
	_, err = s.PressButton(q)
	require.NoError(t, err)

	snap, err = s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.LastError)
}

// Registering a file re-validates the current query but never renders.
func TestFileChangeRevalidates(t *testing.T) {

	pipe := &fakePipeline{}
	m := testManager(pipe, &fakeDownloader{})
	s := m.Create()
	defer m.Close(s.ID)

	// Incomplete uploads: the first trigger is rejected.
	_, err := s.RegisterFile(model.UploadedFile{Role: model.RoleReference, Path: "/data/ref.fa", Parsed: true})
	require.NoError(t, err)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)

	res, err := s.PressButton(q)
	require.NoError(t, err)
	require.Equal(t, render.StatusRejected, res.Outcome.Status)

	// Registering the missing roles flips validated without rendering.
	_, err = s.RegisterFile(model.UploadedFile{Role: model.RolePeaks, Path: "/data/peaks.bed", Parsed: true})
	require.NoError(t, err)
	res, err = s.RegisterFile(model.UploadedFile{Role: model.RoleSignal, Path: "/data/mpra.tsv", Parsed: true})
	require.NoError(t, err)

	assert.Equal(t, ResultRevalidated, res.Kind)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, 0, pipe.calls)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Validated)
}

// Sessions are isolated: state in one never leaks into another.
func TestSessionIsolation(t *testing.T) {

	m := testManager(&fakePipeline{}, &fakeDownloader{})
	a := m.Create()
	b := m.Create()
	defer m.Close(a.ID)
	defer m.Close(b.ID)

	registerCompleteFiles(t, a)

	q, err := model.ParseLocus("chr1:50000", "1000")
	require.NoError(t, err)
	_, err = a.PressButton(q)
	require.NoError(t, err)

	snapB, err := b.Snapshot()
	require.NoError(t, err)
	assert.False(t, snapB.HasQuery)
	assert.False(t, snapB.Validated)
	assert.Equal(t, PhaseIdle, snapB.Phase)
}

func TestClosedSessionRefusesEvents(t *testing.T) {

	m := testManager(&fakePipeline{}, &fakeDownloader{})
	s := m.Create()
	m.Close(s.ID)

	_, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrClosed)

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}
