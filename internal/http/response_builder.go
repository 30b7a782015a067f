package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tally/internal/core"
)

type transactionResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Unnecessary bool   `json:"is_unnecessary"`
	Kind        string `json:"kind"`
	OccurredAt  string `json:"occurred_at"`
}

func newTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Description: tx.Description,
		Unnecessary: tx.Unnecessary,
		Kind:        string(tx.Kind),
		OccurredAt:  tx.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

type categoryAmountResponse struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryResponse struct {
	TotalCents       int64                    `json:"total_cents"`
	IncomeCents      int64                    `json:"income_cents"`
	ExpenseCents     int64                    `json:"expense_cents"`
	NetCents         int64                    `json:"net_cents"`
	Breakdown        []categoryAmountResponse `json:"breakdown"`
	DaysInPeriod     int                      `json:"days_in_period"`
	AvgDailyCents    int64                    `json:"avg_daily_expense_cents"`
	TopCategory      *string                  `json:"top_category"`
	StartDate        string                   `json:"start_date"`
	EndDateInclusive string                   `json:"end_date"`
}

func newSummaryResponse(s core.Summary) summaryResponse {
	resp := summaryResponse{
		TotalCents:    s.Total.Cents,
		IncomeCents:   s.IncomeTotal.Cents,
		ExpenseCents:  s.ExpenseTotal.Cents,
		NetCents:      s.Net.Cents,
		Breakdown:     make([]categoryAmountResponse, 0, len(s.Breakdown)),
		DaysInPeriod:  s.DaysInPeriod,
		AvgDailyCents: s.AvgDaily.Cents,
		StartDate:     s.Start.Format("2006-01-02"),
		// The interval is half-open; show the last day inside it.
		EndDateInclusive: s.End.AddDate(0, 0, -1).Format("2006-01-02"),
	}
	for _, ca := range s.Breakdown {
		resp.Breakdown = append(resp.Breakdown, categoryAmountResponse{
			Category:    ca.Name,
			AmountCents: ca.Amount.Cents,
		})
	}
	if s.TopCategory != "" {
		top := s.TopCategory
		resp.TopCategory = &top
	}
	return resp
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
