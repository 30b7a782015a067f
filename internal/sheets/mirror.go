// Package sheets mirrors recorded transactions to a Google spreadsheet so
// the ledger stays inspectable outside the bot.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tally/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Mirror appends one row per transaction to a configured sheet.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewMirror creates a sheets client using service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE.
func NewMirror(ctx context.Context, spreadsheetID, sheetName string) (*Mirror, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Mirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	if file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// AppendTransaction appends a transaction row. Columns: id, owner, date,
// kind, amount, category, description, unnecessary.
func (m *Mirror) AppendTransaction(ctx context.Context, tx core.Transaction) error {
	row := []any{
		tx.ID,
		tx.OwnerID,
		tx.OccurredAt.Format("2006-01-02 15:04:05"),
		string(tx.Kind),
		tx.Amount.Units(),
		tx.Category,
		tx.Description,
		tx.Unnecessary,
	}

	rangeRef := fmt.Sprintf("%s!A:H", m.sheetName)
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: [][]any{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append transaction row: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to spreadsheet",
		"id", tx.ID,
		"spreadsheet_id", m.spreadsheetID,
		"sheet", m.sheetName)
	return nil
}
