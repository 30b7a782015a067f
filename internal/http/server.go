// Package http exposes the inbound JSON API called by the
// message-understanding layer once it has classified a chat message.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
)

// LedgerService is the application service the handlers drive.
type LedgerService interface {
	Add(ctx context.Context, req services.EntryRequest) (core.Transaction, error)
	DeleteMostRecent(ctx context.Context, ownerID string) (*core.Transaction, error)
	Summarize(ctx context.Context, req services.SummaryRequest) (core.Summary, error)
}

// Publisher enqueues chat replies and spreadsheet mirror requests. A nil
// Publisher disables both; the API keeps answering synchronously.
type Publisher interface {
	PublishReply(ctx context.Context, msg *amqp.ReplyMessage) error
	PublishMirror(ctx context.Context, msg *amqp.MirrorMessage) error
}

type Server struct {
	svc   LedgerService
	queue Publisher
}

// NewServer builds the http.Server for the API. Timeouts are owned by the
// caller (the composition root).
func NewServer(addr string, svc LedgerService, queue Publisher) *http.Server {
	s := &Server{svc: svc, queue: queue}
	return &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/entries", s.handleCreateEntry)
	mux.HandleFunc("/v1/summaries", s.handleSummarize)
	mux.HandleFunc("/v1/undo", s.handleUndo)
	return withRequestLogging(mux)
}

// withRequestLogging logs one line per request in the standard fields.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "Request handled",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
