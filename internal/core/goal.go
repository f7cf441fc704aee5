package core

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// EpochOpen marks a period whose contributions are still provisional.
	EpochOpen EpochState = iota
	// EpochSolidified marks a period whose contributions were moved into CurrentAmount.
	EpochSolidified
)

type (
	// EpochState is the allocation state of one period key.
	EpochState int

	// Contributions holds provisional amounts keyed by period key ("YYYY-MM").
	Contributions map[string]float64

	// SavingGoal is either the single generic goal ("save this much per period")
	// or a dated target that accumulates CurrentAmount over time.
	SavingGoal struct {
		ID                   uuid.UUID     `json:"id"`
		Name                 string        `json:"name"`
		TargetAmount         float64       `json:"targetAmount"`
		CurrentAmount        float64       `json:"currentAmount"`
		TargetDate           time.Time     `json:"targetDate"`
		IsGeneric            bool          `json:"isGeneric"`
		MonthlyContributions Contributions `json:"monthlyContributions,omitempty"`
	}
)

func (s EpochState) String() string {
	switch s {
	case EpochOpen:
		return "open"
	case EpochSolidified:
		return "solidified"
	default:
		return "unknown"
	}
}

// EpochStateOf reports whether key is still open relative to currentKey.
// Keys sort chronologically, so anything before the current key is closed.
func EpochStateOf(key, currentKey string) EpochState {
	if strings.Compare(key, currentKey) >= 0 {
		return EpochOpen
	}
	return EpochSolidified
}

// Provisional returns the amount for key, zero when absent.
func (c Contributions) Provisional(key string) float64 {
	return c[key]
}

// Keys returns the period keys in chronological order.
func (c Contributions) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Contributions) Clone() Contributions {
	if c == nil {
		return nil
	}
	out := make(Contributions, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SetProvisional overwrites the provisional amount for the period key.
func (g *SavingGoal) SetProvisional(key string, amount float64) {
	if g.MonthlyContributions == nil {
		g.MonthlyContributions = make(Contributions)
	}
	g.MonthlyContributions[key] = amount
}

// Solidify moves the provisional amount for key into CurrentAmount and drops
// the entry. It returns false when nothing was pending for key.
func (g *SavingGoal) Solidify(key string) (float64, bool) {
	amount, ok := g.MonthlyContributions[key]
	if !ok {
		return 0, false
	}
	g.CurrentAmount += amount
	delete(g.MonthlyContributions, key)
	return amount, true
}

// StaleKeys returns the pending keys that are closed relative to currentKey.
func (g SavingGoal) StaleKeys(currentKey string) []string {
	var stale []string
	for _, k := range g.MonthlyContributions.Keys() {
		if EpochStateOf(k, currentKey) == EpochSolidified {
			stale = append(stale, k)
		}
	}
	return stale
}

// Progress is CurrentAmount/TargetAmount clamped to [0,1].
func (g SavingGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return math.Max(0, math.Min(g.CurrentAmount/g.TargetAmount, 1))
}

func (g SavingGoal) RemainingAmount() float64 {
	return math.Max(g.TargetAmount-g.CurrentAmount, 0)
}

// DaysRemaining counts whole days from now until TargetDate, never negative.
func (g SavingGoal) DaysRemaining(now time.Time) int {
	days := int(g.TargetDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DailySavingNeeded spreads RemainingAmount over DaysRemaining.
func (g SavingGoal) DailySavingNeeded(now time.Time) float64 {
	days := g.DaysRemaining(now)
	if days <= 0 {
		return g.RemainingAmount()
	}
	return g.RemainingAmount() / float64(days)
}

// IsActiveTarget reports whether a dated goal still accepts allocations:
// its target day has not passed and it is not yet complete.
func (g SavingGoal) IsActiveTarget(now time.Time) bool {
	if g.IsGeneric {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !g.TargetDate.Before(today) && g.Progress() < 1
}

func (g SavingGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(g.TargetAmount); err != nil {
		return err
	}
	return validateAmount(g.CurrentAmount)
}

// GenericGoal returns the first generic goal, if any.
func GenericGoal(goals []SavingGoal) (SavingGoal, bool) {
	for _, g := range goals {
		if g.IsGeneric {
			return g, true
		}
	}
	return SavingGoal{}, false
}
