package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/dashboard"
	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/export"
	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/dvloznov/statement-insights/internal/session"
	"github.com/dvloznov/statement-insights/internal/sources"
	"github.com/rs/zerolog"
)

// uploadField is the multipart field carrying statement files.
const uploadField = "files"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// SessionsHandler handles session endpoints and runs analysis jobs.
type SessionsHandler struct {
	store          session.Store
	runner         *session.Runner
	publisher      jobs.Publisher
	maxUploadBytes int64
	topCategories  int
	log            zerolog.Logger
}

// SessionsConfig holds the limits applied by SessionsHandler.
type SessionsConfig struct {
	MaxUploadBytes int64
	TopCategories  int
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(store session.Store, runner *session.Runner, publisher jobs.Publisher, cfg SessionsConfig, log zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{
		store:          store,
		runner:         runner,
		publisher:      publisher,
		maxUploadBytes: cfg.MaxUploadBytes,
		topCategories:  cfg.TopCategories,
		log:            log,
	}
}

// sessionResponse is the body of the session endpoints.
type sessionResponse struct {
	Session   session.Snapshot `json:"session"`
	Dashboard *dashboard.View  `json:"dashboard,omitempty"`
}

func (h *SessionsHandler) respond(w http.ResponseWriter, status int, sess *session.Session) {
	snap := sess.Snapshot()
	resp := sessionResponse{Session: snap}
	if snap.State == session.StateSuccess {
		resp.Dashboard = dashboard.Build(snap.Result, h.topCategories)
	}
	middleware.WriteJSON(w, status, resp)
}

// CreateSession handles POST /api/sessions
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.respond(w, http.StatusCreated, sess)
}

// ListSessions handles GET /api/sessions
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sessions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": snaps,
		"count":    len(snaps),
	})
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := h.lookup(w, r, sessionID)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, sess)
}

// UploadDocuments handles POST /api/sessions/{id}/documents
// Qualifying files move the session to Processing and enqueue one analysis
// job. A request without any image or PDF leaves the session untouched.
func (h *SessionsHandler) UploadDocuments(w http.ResponseWriter, r *http.Request, sessionID string) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	sess, ok := h.lookup(w, r, sessionID)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	docs := make([]domain.InputDocument, 0, len(files))
	for _, fh := range files {
		doc, err := readUpload(fh)
		if err != nil {
			log.Warn().Err(pipeline.NewEncodingError(fh.Filename, err)).Msg("Upload skipped")
			continue
		}
		docs = append(docs, doc)
	}

	qualifying, err := h.runner.Begin(sess, docs)
	switch {
	case errors.Is(err, session.ErrNoQualifyingDocuments):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrInvalidTransition):
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to start analysis")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to start analysis")
		return
	}

	job := &jobs.AnalyzeJob{
		SessionID: sessionID,
		Documents: qualifying,
	}
	if err := h.publisher.PublishAnalyze(ctx, job); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to enqueue analysis job")
		if ferr := sess.Fail(err); ferr != nil {
			log.Error().Err(ferr).Str("session_id", sessionID).Msg("Failed to record enqueue error")
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("session_id", sessionID).
		Int("documents", len(qualifying)).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":         job.JobID,
		"session_id":     sessionID,
		"status":         jobs.JobStatusPending,
		"document_count": len(qualifying),
	})
}

func readUpload(fh *multipart.FileHeader) (domain.InputDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.InputDocument{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.InputDocument{}, err
	}

	return domain.InputDocument{
		Name:      fh.Filename,
		MediaType: sources.DetectMediaType(fh.Header.Get("Content-Type"), data),
		Data:      data,
	}, nil
}

// ResetSession handles POST /api/sessions/{id}/reset
func (h *SessionsHandler) ResetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := h.lookup(w, r, sessionID)
	if !ok {
		return
	}

	if err := sess.Reset(); err != nil {
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	h.respond(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := h.lookup(w, r, sessionID)
	if !ok {
		return
	}
	if sess.State() == session.StateProcessing {
		middleware.WriteError(w, http.StatusConflict, session.ErrBusy.Error())
		return
	}

	if err := h.store.Delete(r.Context(), sessionID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV handles GET /api/sessions/{id}/export.csv
func (h *SessionsHandler) ExportCSV(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := h.lookup(w, r, sessionID)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	if snap.State != session.StateSuccess || snap.Result == nil {
		middleware.WriteError(w, http.StatusConflict, "No analysis result to export")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename()))
	if err := export.WriteTransactions(w, snap.Result.Transactions); err != nil {
		// Headers are already sent; only the log can carry this.
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to write CSV export")
	}
}

// ProcessJob is the worker side of UploadDocuments: it runs the analysis
// for the job's session and records the outcome on the session.
func (h *SessionsHandler) ProcessJob(ctx context.Context, job jobs.Job) error {
	analyzeJob, ok := job.(*jobs.AnalyzeJob)
	if !ok {
		return fmt.Errorf("ProcessJob: unexpected job type: %T", job)
	}

	sess, err := h.store.Get(ctx, analyzeJob.SessionID)
	if err != nil {
		return fmt.Errorf("ProcessJob: session %s: %w", analyzeJob.SessionID, err)
	}

	h.log.Info().
		Str("job_id", analyzeJob.JobID).
		Str("session_id", analyzeJob.SessionID).
		Int("documents", len(analyzeJob.Documents)).
		Msg("Processing analysis job")

	return h.runner.Run(ctx, sess, analyzeJob.Documents)
}

func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request, sessionID string) (*session.Session, bool) {
	sess, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to get session")
		}
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}
