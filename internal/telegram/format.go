package telegram

import (
	"fmt"
	"strings"

	"tally/internal/core"
)

// PeriodTitle returns the display title for a summary reply.
func PeriodTitle(p core.Period, unnecessaryOnly bool) string {
	var title string
	switch p {
	case core.ThisWeek:
		title = "This Week"
	case core.LastWeek:
		title = "Last Week"
	case core.ThisMonth:
		title = "This Month"
	case core.LastMonth:
		title = "Last Month"
	case core.Custom:
		title = "Custom Period"
	default:
		title = "Summary"
	}
	if unnecessaryOnly {
		title += " Waste"
	}
	return title
}

// BuildEntryReply confirms a recorded transaction.
func BuildEntryReply(tx core.Transaction) string {
	if tx.Kind == core.Income {
		return fmt.Sprintf("✅ €%.2f income recorded under %s", tx.Amount.Units(), tx.Category)
	}
	mark := "Essential"
	if tx.Unnecessary {
		mark = "Unnecessary"
	}
	return fmt.Sprintf("✅ €%.2f added under %s\nMarked as %s", tx.Amount.Units(), tx.Category, mark)
}

// BuildUndoReply confirms the undo of the most recent transaction, or
// reports that there was nothing to undo.
func BuildUndoReply(tx *core.Transaction) string {
	if tx == nil {
		return "⚠️ No transactions to undo."
	}
	return fmt.Sprintf("↩️ Undone: €%.2f from %s", tx.Amount.Units(), tx.Category)
}

// BuildSummaryReply renders a Summary for a chat. The displayed end date is
// the last day inside the half-open interval.
func BuildSummaryReply(s core.Summary, title string, unnecessaryOnly bool) string {
	if s.Total.Cents == 0 {
		return fmt.Sprintf("📊 %s: No transactions recorded yet.\nStart adding some!", title)
	}

	var b strings.Builder
	lastDay := s.End.AddDate(0, 0, -1)
	fmt.Fprintf(&b, "📊 %s (%s to %s):\n", title, s.Start.Format("2006-01-02"), lastDay.Format("2006-01-02"))
	fmt.Fprintf(&b, "Total: €%.2f\n", s.Total.Units())
	fmt.Fprintf(&b, "Income: €%.2f\n", s.IncomeTotal.Units())
	fmt.Fprintf(&b, "Expenses: €%.2f\n", s.ExpenseTotal.Units())
	fmt.Fprintf(&b, "Net: €%.2f\n", s.Net.Units())
	fmt.Fprintf(&b, "Average Daily: €%.2f\n", s.AvgDaily.Units())
	if s.TopCategory != "" {
		for _, ca := range s.Breakdown {
			if ca.Name == s.TopCategory {
				fmt.Fprintf(&b, "Top Category: %s (€%.2f)\n", ca.Name, ca.Amount.Units())
				break
			}
		}
	}

	b.WriteString("\nCategory Breakdown:\n")
	for _, ca := range s.Breakdown {
		fmt.Fprintf(&b, "- %s: €%.2f\n", ca.Name, ca.Amount.Units())
	}

	if unnecessaryOnly {
		b.WriteString("\nTip: Review these to cut back on waste!")
	} else {
		b.WriteString("\nKeep tracking to stay on budget!")
	}
	return b.String()
}
