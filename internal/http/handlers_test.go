package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/storage"
)

// fakeStore backs the real service in handler tests.
type fakeStore struct {
	txs []core.Transaction
}

func (f *fakeStore) Insert(_ context.Context, tx core.Transaction) error {
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeStore) Query(_ context.Context, ownerID string, start, end time.Time, filter storage.QueryFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.OwnerID != ownerID || tx.OccurredAt.Before(start) || !tx.OccurredAt.Before(end) {
			continue
		}
		if filter.UnnecessaryOnly && !tx.Unnecessary {
			continue
		}
		if filter.Kind != "" && tx.Kind != filter.Kind {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeStore) Latest(_ context.Context, ownerID string) (*core.Transaction, error) {
	var latest *core.Transaction
	for i := range f.txs {
		tx := f.txs[i]
		if tx.OwnerID != ownerID {
			continue
		}
		if latest == nil || !tx.OccurredAt.Before(latest.OccurredAt) {
			latest = &f.txs[i]
		}
	}
	return latest, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i, tx := range f.txs {
		if tx.ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePublisher struct {
	replies []*amqp.ReplyMessage
	mirrors []*amqp.MirrorMessage
}

func (f *fakePublisher) PublishReply(_ context.Context, msg *amqp.ReplyMessage) error {
	f.replies = append(f.replies, msg)
	return nil
}

func (f *fakePublisher) PublishMirror(_ context.Context, msg *amqp.MirrorMessage) error {
	f.mirrors = append(f.mirrors, msg)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore, *fakePublisher) {
	t.Helper()
	store := &fakeStore{}
	queue := &fakePublisher{}
	return &Server{svc: services.NewLedgerService(store), queue: queue}, store, queue
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateEntry(t *testing.T) {
	srv, store, queue := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/entries", map[string]any{
		"owner_id":       "u1",
		"chat_id":        42,
		"amount":         "15.50",
		"category":       "Food",
		"description":    "lunch",
		"is_unnecessary": false,
		"kind":           "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AmountCents != 1550 || resp.Kind != "expense" || resp.ID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(store.txs) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(store.txs))
	}
	if len(queue.mirrors) != 1 || queue.mirrors[0].TransactionID != resp.ID {
		t.Fatalf("expected mirror message for %s, got %+v", resp.ID, queue.mirrors)
	}
	if len(queue.replies) != 1 || queue.replies[0].ChatID != 42 {
		t.Fatalf("expected reply for chat 42, got %+v", queue.replies)
	}
}

func TestCreateEntryInvalidAmount(t *testing.T) {
	srv, store, queue := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/entries", map[string]any{
		"owner_id": "u1",
		"amount":   "-5",
		"kind":     "expense",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "validation_error" {
		t.Fatalf("expected validation_error, got %q", resp.Error)
	}
	if len(store.txs) != 0 || len(queue.mirrors) != 0 {
		t.Fatalf("nothing should be stored or enqueued on rejection")
	}
}

func TestCreateEntryMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/v1/entries", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSummarizeThisMonth(t *testing.T) {
	srv, _, queue := newTestServer(t)

	for _, e := range []map[string]any{
		{"owner_id": "u1", "amount": "100", "category": "Food", "kind": "expense"},
		{"owner_id": "u1", "amount": "50", "category": "Food", "kind": "expense"},
		{"owner_id": "u1", "amount": "5000", "category": "Salary", "kind": "income"},
	} {
		if rec := doRequest(t, srv, http.MethodPost, "/v1/entries", e); rec.Code != http.StatusCreated {
			t.Fatalf("seed entry failed: %d", rec.Code)
		}
	}

	rec := doRequest(t, srv, http.MethodPost, "/v1/summaries", map[string]any{
		"owner_id": "u1",
		"chat_id":  42,
		"period":   "this_month",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCents != 515000 || resp.IncomeCents != 500000 || resp.ExpenseCents != 15000 || resp.NetCents != 485000 {
		t.Fatalf("unexpected totals %+v", resp)
	}
	if resp.TopCategory == nil || *resp.TopCategory != "Salary" {
		t.Fatalf("expected top category Salary, got %v", resp.TopCategory)
	}

	// The seed entries carried no chat_id, so only the summary reply lands.
	if len(queue.replies) != 1 || queue.replies[0].ChatID != 42 {
		t.Fatalf("expected one summary reply for chat 42, got %+v", queue.replies)
	}
}

func TestSummarizeInvalidPeriod(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/summaries", map[string]any{
		"owner_id": "u1",
		"period":   "fortnight",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "invalid_period" {
		t.Fatalf("expected invalid_period, got %q", resp.Error)
	}
}

func TestSummarizeCustomMissingDates(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/summaries", map[string]any{
		"owner_id":   "u1",
		"period":     "custom",
		"start_date": "2024-01-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_period") {
		t.Fatalf("expected invalid_period, got %s", rec.Body.String())
	}
}

func TestSummarizeMalformedDate(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/summaries", map[string]any{
		"owner_id":   "u1",
		"period":     "custom",
		"start_date": "01/02/2024",
		"end_date":   "2024-01-31",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestSummarizeEmptyCustomRange(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/summaries", map[string]any{
		"owner_id":   "u1",
		"period":     "custom",
		"start_date": "2024-01-01",
		"end_date":   "2024-01-31",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty result, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCents != 0 || len(resp.Breakdown) != 0 || resp.TopCategory != nil {
		t.Fatalf("expected zero summary, got %+v", resp)
	}
	if resp.StartDate != "2024-01-01" || resp.EndDateInclusive != "2024-01-31" {
		t.Fatalf("unexpected bounds %s..%s", resp.StartDate, resp.EndDateInclusive)
	}
}

func TestUndo(t *testing.T) {
	srv, store, queue := newTestServer(t)

	// Empty owner id is a validation error.
	rec := doRequest(t, srv, http.MethodPost, "/v1/undo", map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing owner, got %d", rec.Code)
	}

	// No transactions yet: still a 200 with a null result.
	rec = doRequest(t, srv, http.MethodPost, "/v1/undo", map[string]any{"owner_id": "u1", "chat_id": 42})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"deleted":null`) {
		t.Fatalf("expected null deleted, got %s", rec.Body.String())
	}

	if rec := doRequest(t, srv, http.MethodPost, "/v1/entries", map[string]any{
		"owner_id": "u1", "amount": "10", "category": "Food", "kind": "expense",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed entry failed: %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/v1/undo", map[string]any{"owner_id": "u1", "chat_id": 42})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.txs) != 0 {
		t.Fatalf("expected transaction removed, got %+v", store.txs)
	}
	if len(queue.replies) != 2 {
		t.Fatalf("expected two undo replies, got %d", len(queue.replies))
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
