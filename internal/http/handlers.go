package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/telegram"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	svcReq, err := req.toServiceRequest()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	tx, err := s.svc.Add(r.Context(), svcReq)
	if err != nil {
		s.writeServiceError(w, r, err, "create entry")
		return
	}

	s.enqueueMirror(r, tx.ID)
	s.enqueueReply(r, req.ChatID, telegram.BuildEntryReply(tx))

	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	svcReq, err := req.toServiceRequest()
	if err != nil {
		s.writeServiceError(w, r, err, "parse summary query")
		return
	}

	summary, err := s.svc.Summarize(r.Context(), svcReq)
	if err != nil {
		s.writeServiceError(w, r, err, "summarize")
		return
	}

	title := telegram.PeriodTitle(svcReq.Period, svcReq.UnnecessaryOnly)
	s.enqueueReply(r, req.ChatID, telegram.BuildSummaryReply(summary, title, svcReq.UnnecessaryOnly))

	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req undoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "owner_id is required")
		return
	}

	deleted, err := s.svc.DeleteMostRecent(r.Context(), req.OwnerID)
	if err != nil {
		s.writeServiceError(w, r, err, "undo")
		return
	}

	s.enqueueReply(r, req.ChatID, telegram.BuildUndoReply(deleted))

	// Nothing to undo is a normal outcome, not a failure.
	if deleted == nil {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": newTransactionResponse(*deleted)})
}

// writeServiceError maps domain errors onto the API's error taxonomy.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrInvalidPeriod):
		writeError(w, http.StatusUnprocessableEntity, "invalid_period", err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyOwner):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"operation", op,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// enqueueReply publishes a chat reply when the request names a chat and a
// queue is configured. Delivery is best effort from the API's point of
// view; a publish failure never fails the request that already committed.
func (s *Server) enqueueReply(r *http.Request, chatID int64, text string) {
	if s.queue == nil || chatID == 0 {
		return
	}
	if err := s.queue.PublishReply(r.Context(), amqp.NewReplyMessage(chatID, text)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to enqueue reply",
			"chat_id", chatID,
			"error", err)
	}
}

func (s *Server) enqueueMirror(r *http.Request, transactionID string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishMirror(r.Context(), amqp.NewMirrorMessage(transactionID)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to enqueue mirror",
			"transaction_id", transactionID,
			"error", err)
	}
}
