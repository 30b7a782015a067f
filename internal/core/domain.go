package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tells whether a transaction adds to or subtracts from the
	// owner's balance. The amount itself is always positive.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is the sole persisted entity. Created once, never
	// mutated; removal only happens through the undo path.
	Transaction struct {
		ID          string
		OwnerID     string
		Amount      Money
		Category    string
		Description string
		Unnecessary bool // only meaningful for expenses
		Kind        Kind
		OccurredAt  time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyOwner    = errors.New("empty owner id")
	ErrInvalidPeriod = errors.New("invalid period")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date was never set. Custom period bounds
// are optional fields, a zero Date means "not provided".
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Kind == Income && t.Unnecessary {
		return errors.New("income cannot be marked unnecessary")
	}
	return nil
}
