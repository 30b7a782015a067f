package http

import (
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/services"
)

// entryRequest is the wire shape for a classified income/expense entry.
// Amount is a json.Number so both "12.34" and 12.34 are accepted.
type entryRequest struct {
	OwnerID     string      `json:"owner_id"`
	ChatID      int64       `json:"chat_id,omitempty"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Unnecessary bool        `json:"is_unnecessary"`
	Kind        string      `json:"kind"`
	OccurredAt  string      `json:"occurred_at,omitempty"` // RFC 3339, optional
}

func (r entryRequest) toServiceRequest() (services.EntryRequest, error) {
	cents, err := core.ParseDecimalToCents(r.Amount.String())
	if err != nil {
		return services.EntryRequest{}, err
	}

	var occurredAt time.Time
	if r.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return services.EntryRequest{}, fmt.Errorf("parse occurred_at: %w", err)
		}
	}

	kind := core.Kind(r.Kind)
	if err := kind.Validate(); err != nil {
		return services.EntryRequest{}, err
	}

	return services.EntryRequest{
		OwnerID:     r.OwnerID,
		Amount:      core.Money{Cents: cents},
		Category:    r.Category,
		Description: r.Description,
		Unnecessary: r.Unnecessary,
		Kind:        kind,
		OccurredAt:  occurredAt,
	}, nil
}

// summaryRequest is the wire shape for a parsed summary query.
type summaryRequest struct {
	OwnerID         string `json:"owner_id"`
	ChatID          int64  `json:"chat_id,omitempty"`
	Period          string `json:"period"`
	StartDate       string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate         string `json:"end_date,omitempty"`   // YYYY-MM-DD
	UnnecessaryOnly bool   `json:"unnecessary_only"`
	Kind            string `json:"kind,omitempty"` // optional filter
}

func (r summaryRequest) toServiceRequest() (services.SummaryRequest, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return services.SummaryRequest{}, fmt.Errorf("%w: malformed start date %q", core.ErrInvalidPeriod, r.StartDate)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return services.SummaryRequest{}, fmt.Errorf("%w: malformed end date %q", core.ErrInvalidPeriod, r.EndDate)
	}

	kind := core.Kind(r.Kind)
	if kind != "" {
		if err := kind.Validate(); err != nil {
			return services.SummaryRequest{}, err
		}
	}

	return services.SummaryRequest{
		OwnerID:         r.OwnerID,
		Period:          core.Period(r.Period),
		CustomStart:     start,
		CustomEnd:       end,
		UnnecessaryOnly: r.UnnecessaryOnly,
		KindFilter:      kind,
	}, nil
}

type undoRequest struct {
	OwnerID string `json:"owner_id"`
	ChatID  int64  `json:"chat_id,omitempty"`
}

// parseDate parses an optional YYYY-MM-DD value; empty stays the zero Date.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}
