package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/middleware"
)

// NewRouter registers every API route on a new ServeMux.
func NewRouter(sessions *SessionsHandler, jobsHandler *JobsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Sessions endpoints
	mux.HandleFunc("POST /api/sessions", sessions.CreateSession)
	mux.HandleFunc("GET /api/sessions", sessions.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		sessions.GetSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		sessions.DeleteSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/sessions/{id}/documents", func(w http.ResponseWriter, r *http.Request) {
		sessions.UploadDocuments(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/sessions/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		sessions.ResetSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET /api/sessions/{id}/export.csv", func(w http.ResponseWriter, r *http.Request) {
		sessions.ExportCSV(w, r, r.PathValue("id"))
	})

	// Jobs endpoints
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		jobsHandler.GetJob(w, r, r.PathValue("id"))
	})

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
