package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yumyai/snpview/logger"
	"github.com/yumyai/snpview/pkg/model"
	"github.com/yumyai/snpview/pkg/render"
	"github.com/yumyai/snpview/pkg/session"
	"go.uber.org/zap"
)

// Response struct for every trigger endpoint.
type TriggerResponse struct {
	SessionID string            `json:"session_id"`
	Result    string            `json:"result"`
	Status    string            `json:"status,omitempty"`
	Reasons   []string          `json:"reasons,omitempty"`
	Proposed  string            `json:"proposed_locus,omitempty"`
	Message   string            `json:"message,omitempty"`
	Artifacts []render.Artifact `json:"artifacts,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type SessionCreatedResponse struct {
	SessionID string `json:"session_id"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Look up the session from the path, or answer 404.
func (appctx *AppContext) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("session_id")
	s, ok := appctx.Sessions.Get(id)
	if !ok {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// Open a new session.
func (appctx *AppContext) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {

	s := appctx.Sessions.Create()

	logger.Info("Session opened", zap.String("session", s.ID))

	writeJSON(w, http.StatusCreated, SessionCreatedResponse{SessionID: s.ID})
}

// Close a session, stopping its worker and dropping its state.
func (appctx *AppContext) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	appctx.Sessions.Close(s.ID)

	logger.Info("Session closed", zap.String("session", s.ID))

	w.WriteHeader(http.StatusNoContent)
}

// Status page for the dashboard.
func (appctx *AppContext) SessionStatusPage(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	snap, err := s.Snapshot()
	if err != nil {
		http.Error(w, "Session closed", http.StatusGone)
		return
	}

	page := render.StatusPage{
		SessionID:     snap.ID,
		Phase:         string(snap.Phase),
		Locus:         snap.Locus,
		Flank:         snap.Flank,
		Validated:     snap.Validated,
		ProposedLocus: snap.Proposed,
		Reasons:       snap.Reasons,
		RenderError:   snap.LastError,
		Artifacts:     snap.Artifacts,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderStatusPage(w, page); err != nil {
		logger.Error(err.Error())
		http.Error(w, "Failed to render status page", http.StatusInternalServerError)
	}
}

// The "Render" button. Form fields: search_query, flank.
func (appctx *AppContext) RenderTriggerHandler(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	searchQuery := r.PostFormValue("search_query")
	flank := r.PostFormValue("flank")

	logger.Info("Running render trigger",
		zap.String("session", s.ID),
		zap.String("search_query", searchQuery),
		zap.String("flank", flank),
	)

	// Canonicalize at the trigger point; a parse failure never reaches
	// validation.
	q, err := model.ParseLocus(searchQuery, flank)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, TriggerResponse{
			SessionID: s.ID,
			Result:    "rejected",
			Reasons:   []string{err.Error()},
		})
		return
	}

	res, err := s.PressButton(q)
	appctx.writeTriggerResult(w, s.ID, res, err)
}

// A click inside a rendered plot. Form fields: x, y, or cleared=true.
func (appctx *AppContext) PlotClickHandler(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	var ev *session.ClickEvent
	if r.PostFormValue("cleared") != "true" {
		x, errX := strconv.ParseFloat(r.PostFormValue("x"), 64)
		y, errY := strconv.ParseFloat(r.PostFormValue("y"), 64)
		if errX != nil || errY != nil {
			http.Error(w, "Invalid x or y value", http.StatusBadRequest)
			return
		}
		ev = &session.ClickEvent{X: x, Y: y}
	}

	res, err := s.Click(ev)
	appctx.writeTriggerResult(w, s.ID, res, err)
}

// Confirmation response for a proposed re-center. Form field: accept.
func (appctx *AppContext) ConfirmHandler(w http.ResponseWriter, r *http.Request) {

	s, ok := appctx.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	accept, err := strconv.ParseBool(r.PostFormValue("accept"))
	if err != nil {
		http.Error(w, "Invalid accept value", http.StatusBadRequest)
		return
	}

	res, err := s.Confirm(accept)
	appctx.writeTriggerResult(w, s.ID, res, err)
}

func (appctx *AppContext) writeTriggerResult(w http.ResponseWriter, sessionID string, res session.Result, err error) {

	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, session.ErrBusyConfirming):
			status = http.StatusConflict
		case errors.Is(err, session.ErrClosed):
			status = http.StatusGone
		}
		writeJSON(w, status, TriggerResponse{SessionID: sessionID, Error: err.Error()})
		return
	}

	resp := TriggerResponse{
		SessionID: sessionID,
		Result:    string(res.Kind),
		Reasons:   res.Reasons,
		Proposed:  res.Proposed,
		Message:   res.Message,
	}
	if res.Outcome != nil {
		resp.Status = string(res.Outcome.Status)
		resp.Artifacts = res.Outcome.Artifacts
		if res.Outcome.Err != nil {
			resp.Error = res.Outcome.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
