package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriptionCommentPrefix marks expenses generated from a subscription.
// Older records carry only this comment; newer ones also set SourceSubscriptionID.
const SubscriptionCommentPrefix = "Subscription:"

type (
	Expense struct {
		ID         uuid.UUID  `json:"id"`
		Amount     float64    `json:"amount"`
		Comment    string     `json:"comment"`
		Date       time.Time  `json:"date"`
		CategoryID *uuid.UUID `json:"categoryId,omitempty"`
		// SourceSubscriptionID is set on expenses materialized from a subscription.
		SourceSubscriptionID *uuid.UUID `json:"sourceSubscriptionId,omitempty"`
	}

	// Income.IsMonthly is a display hint only; every income in a period counts once.
	Income struct {
		ID        uuid.UUID `json:"id"`
		Amount    float64   `json:"amount"`
		Date      time.Time `json:"date"`
		IsMonthly bool      `json:"isMonthly"`
	}

	Investment struct {
		ID         uuid.UUID  `json:"id"`
		Amount     float64    `json:"amount"`
		Comment    string     `json:"comment"`
		Date       time.Time  `json:"date"`
		CategoryID *uuid.UUID `json:"categoryId,omitempty"`
	}

	Category struct {
		ID    uuid.UUID `json:"id"`
		Name  string    `json:"name"`
		Color Color     `json:"color"`
	}

	// Color is an RGBA colour with channels in [0,1].
	Color struct {
		Red   float64 `json:"red"`
		Green float64 `json:"green"`
		Blue  float64 `json:"blue"`
		Alpha float64 `json:"alpha"`
	}

	Subscription struct {
		ID         uuid.UUID  `json:"id"`
		Name       string     `json:"name"`
		Amount     float64    `json:"amount"`
		CategoryID *uuid.UUID `json:"categoryId,omitempty"`
		IsActive   bool       `json:"isActive"`
		StartDate  time.Time  `json:"startDate"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidResetDay  = errors.New("invalid reset day")
	ErrInvalidResetType = errors.New("invalid reset type")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrEmptyName        = errors.New("empty name")
	ErrZeroDate         = errors.New("date cannot be zero")
)

// Identity accessors let the store handle every collection the same way.
func (e Expense) Key() uuid.UUID      { return e.ID }
func (i Income) Key() uuid.UUID       { return i.ID }
func (i Investment) Key() uuid.UUID   { return i.ID }
func (c Category) Key() uuid.UUID     { return c.ID }
func (s Subscription) Key() uuid.UUID { return s.ID }
func (g SavingGoal) Key() uuid.UUID   { return g.ID }
func (m ManualPL) Key() uuid.UUID     { return m.ID }

// SubscriptionComment is the comment written on materialized subscription expenses.
func SubscriptionComment(name string) string {
	return SubscriptionCommentPrefix + " " + name
}

// IsFromSubscription reports whether the expense was generated from a subscription.
func (e Expense) IsFromSubscription() bool {
	return e.SourceSubscriptionID != nil || strings.HasPrefix(e.Comment, SubscriptionCommentPrefix)
}

// validateAmount rejects values that cannot take part in additive sums.
// Negative amounts are tolerated; callers reject them before reaching the engine.
func validateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func validateDate(d time.Time) error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	return validateDate(e.Date)
}

func (i Income) Validate() error {
	if err := validateAmount(i.Amount); err != nil {
		return err
	}
	return validateDate(i.Date)
}

func (i Investment) Validate() error {
	if err := validateAmount(i.Amount); err != nil {
		return err
	}
	return validateDate(i.Date)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(s.Amount); err != nil {
		return err
	}
	return validateDate(s.StartDate)
}

// ExpenseToInvestment keeps amount, comment, date and category.
func ExpenseToInvestment(e Expense) Investment {
	return Investment{
		ID:         uuid.New(),
		Amount:     e.Amount,
		Comment:    e.Comment,
		Date:       e.Date,
		CategoryID: e.CategoryID,
	}
}
