package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary holds the derived statistics for one resolved interval. It is a
// plain value handed to the presentation layer; zero fields mean "nothing
// recorded", which is a valid result and not a failure.
type Summary struct {
	Total        Money
	IncomeTotal  Money
	ExpenseTotal Money
	Net          Money // income minus expense, may be negative
	Breakdown    []CategoryAmount
	DaysInPeriod int
	AvgDaily     Money // average daily expense, zero for empty intervals
	TopCategory  string
	Start        time.Time
	End          time.Time
}

// Aggregate computes a Summary over transactions already filtered to the
// half-open interval [start, end). It is pure: totals and the breakdown are
// independent of input order, only the first-seen order of categories (used
// for display and tie breaks) follows the input.
func Aggregate(txs []Transaction, start, end time.Time) Summary {
	s := Summary{Start: start, End: end}

	sums := make(map[string]int64, len(txs))
	for _, tx := range txs {
		s.Total.Cents += tx.Amount.Cents
		switch tx.Kind {
		case Income:
			s.IncomeTotal.Cents += tx.Amount.Cents
		case Expense:
			s.ExpenseTotal.Cents += tx.Amount.Cents
		}
		if _, seen := sums[tx.Category]; !seen {
			s.Breakdown = append(s.Breakdown, CategoryAmount{Name: tx.Category})
		}
		sums[tx.Category] += tx.Amount.Cents
	}
	for i := range s.Breakdown {
		s.Breakdown[i].Amount = Money{Cents: sums[s.Breakdown[i].Name]}
	}

	s.Net = Money{Cents: s.IncomeTotal.Cents - s.ExpenseTotal.Cents}
	s.DaysInPeriod = daysBetween(start, end)
	if s.DaysInPeriod > 0 {
		s.AvgDaily = Money{Cents: s.ExpenseTotal.Cents / int64(s.DaysInPeriod)}
	}

	// Top category over the combined income+expense breakdown, strict
	// greater-than so ties keep the first-seen category.
	var top int64
	for _, ca := range s.Breakdown {
		if ca.Amount.Cents > top {
			top = ca.Amount.Cents
			s.TopCategory = ca.Name
		}
	}
	return s
}

// daysBetween counts calendar days from start to end. The bounds are
// midnight-aligned in their own location, but a local day spanning a DST
// transition is not 24 hours long, so the dates are re-anchored in UTC
// before dividing.
func daysBetween(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s) / (24 * time.Hour))
}
