package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func ptr(v float64) *float64 { return &v }

func TestManualPLEffectiveValues(t *testing.T) {
	tests := []struct {
		name           string
		pl             ManualPL
		wantMode       OverrideMode
		wantIncome     float64
		wantExpenses   float64
		wantProfitLoss float64
	}{
		{
			name:           "direct override",
			pl:             NewDirectPL(3, 2024, 500, 0, ""),
			wantMode:       DirectOverride,
			wantProfitLoss: 500,
		},
		{
			name:           "derived override",
			pl:             NewDerivedPL(3, 2024, 2000, 1200, 100, ""),
			wantMode:       DerivedOverride,
			wantIncome:     2000,
			wantExpenses:   1200,
			wantProfitLoss: 800,
		},
		{
			name:           "direct wins when both are populated",
			pl:             ManualPL{Month: 3, Year: 2024, ProfitLoss: ptr(-40), Income: ptr(100), Expenses: ptr(20)},
			wantMode:       DirectOverride,
			wantIncome:     100,
			wantExpenses:   20,
			wantProfitLoss: -40,
		},
		{
			name:     "empty derived is zero",
			pl:       ManualPL{Month: 1, Year: 2024},
			wantMode: DerivedOverride,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pl.Mode(); got != tt.wantMode {
				t.Errorf("Mode() = %v, want %v", got, tt.wantMode)
			}
			if got := tt.pl.EffectiveIncome(); got != tt.wantIncome {
				t.Errorf("EffectiveIncome() = %v, want %v", got, tt.wantIncome)
			}
			if got := tt.pl.EffectiveExpenses(); got != tt.wantExpenses {
				t.Errorf("EffectiveExpenses() = %v, want %v", got, tt.wantExpenses)
			}
			if got := tt.pl.EffectiveProfitLoss(); got != tt.wantProfitLoss {
				t.Errorf("EffectiveProfitLoss() = %v, want %v", got, tt.wantProfitLoss)
			}
		})
	}
}

func TestManualPLValidate(t *testing.T) {
	if err := NewDirectPL(12, 2024, 1, 0, "").Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := NewDirectPL(13, 2024, 1, 0, "").Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if err := NewDirectPL(1, 2024, math.NaN(), 0, "").Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSavingGoalProgress(t *testing.T) {
	tests := []struct {
		name string
		goal SavingGoal
		want float64
	}{
		{"half way", SavingGoal{TargetAmount: 200, CurrentAmount: 100}, 0.5},
		{"clamped above", SavingGoal{TargetAmount: 100, CurrentAmount: 150}, 1},
		{"zero target", SavingGoal{TargetAmount: 0, CurrentAmount: 10}, 0},
		{"negative current", SavingGoal{TargetAmount: 100, CurrentAmount: -10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSavingGoalSolidifyOnce(t *testing.T) {
	g := SavingGoal{TargetAmount: 1000, CurrentAmount: 50}
	g.SetProvisional("2024-01", 100)

	amount, ok := g.Solidify("2024-01")
	if !ok || amount != 100 {
		t.Fatalf("Solidify() = %v, %v; want 100, true", amount, ok)
	}
	if g.CurrentAmount != 150 {
		t.Fatalf("CurrentAmount = %v, want 150", g.CurrentAmount)
	}
	if _, exists := g.MonthlyContributions["2024-01"]; exists {
		t.Fatal("provisional entry should be removed")
	}

	if _, ok := g.Solidify("2024-01"); ok {
		t.Fatal("second Solidify should be a no-op")
	}
	if g.CurrentAmount != 150 {
		t.Fatalf("CurrentAmount changed on second Solidify: %v", g.CurrentAmount)
	}
}

func TestEpochStateOf(t *testing.T) {
	if EpochStateOf("2024-02", "2024-02") != EpochOpen {
		t.Error("current key should be open")
	}
	if EpochStateOf("2023-12", "2024-01") != EpochSolidified {
		t.Error("previous key should be solidified")
	}
	g := SavingGoal{MonthlyContributions: Contributions{"2024-03": 1, "2023-11": 2, "2024-01": 3}}
	stale := g.StaleKeys("2024-03")
	if len(stale) != 2 || stale[0] != "2023-11" || stale[1] != "2024-01" {
		t.Errorf("StaleKeys() = %v", stale)
	}
}

func TestSavingGoalActiveAndDaily(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	g := SavingGoal{TargetAmount: 300, CurrentAmount: 0, TargetDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	if !g.IsActiveTarget(now) {
		t.Error("goal due today should still be active")
	}
	g.TargetDate = now.AddDate(0, 0, -1)
	if g.IsActiveTarget(now) {
		t.Error("past goal should not be active")
	}
	g.TargetDate = now.AddDate(0, 0, 30)
	if got := g.DailySavingNeeded(now); got != 10 {
		t.Errorf("DailySavingNeeded() = %v, want 10", got)
	}
	g.CurrentAmount = 300
	if g.IsActiveTarget(now) {
		t.Error("completed goal should not be active")
	}
	generic := SavingGoal{IsGeneric: true, TargetAmount: 100, TargetDate: now.AddDate(1, 0, 0)}
	if generic.IsActiveTarget(now) {
		t.Error("generic goal is never an allocation target")
	}
}

func TestGenericGoalPicksFirst(t *testing.T) {
	first := SavingGoal{ID: uuid.New(), IsGeneric: true, Name: "a"}
	goals := []SavingGoal{{Name: "dated"}, first, {ID: uuid.New(), IsGeneric: true, Name: "b"}}
	got, ok := GenericGoal(goals)
	if !ok || got.ID != first.ID {
		t.Fatalf("GenericGoal() = %v, %v", got.Name, ok)
	}
	if _, ok := GenericGoal(nil); ok {
		t.Fatal("expected no generic goal")
	}
}

func TestSettingsValidate(t *testing.T) {
	good := DefaultSettings()
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mutate func(*Settings)
		want   error
	}{
		{func(s *Settings) { s.ResetType = "weekly" }, ErrInvalidResetType},
		{func(s *Settings) { s.PayDay = 0 }, ErrInvalidResetDay},
		{func(s *Settings) { s.MonthlyResetDate = 32 }, ErrInvalidResetDay},
		{func(s *Settings) { s.Currency = "XXXX" }, ErrInvalidCurrency},
	}
	for i, b := range bads {
		s := DefaultSettings()
		b.mutate(&s)
		if err := s.Validate(); !errors.Is(err, b.want) {
			t.Fatalf("case %d: expected %v, got %v", i, b.want, err)
		}
	}
}

func TestSettingsResetDayAndCurrency(t *testing.T) {
	s := Settings{ResetType: PayDay, PayDay: 15, MonthlyResetDate: 3}
	if s.ResetDay() != 15 {
		t.Errorf("payDay reset day = %d", s.ResetDay())
	}
	s.ResetType = MonthlyDate
	if s.ResetDay() != 3 {
		t.Errorf("monthlyDate reset day = %d", s.ResetDay())
	}
	if s.CurrencyCode() != DefaultCurrency {
		t.Errorf("empty currency should default, got %q", s.CurrencyCode())
	}
	s.Currency = "eur"
	if s.CurrencyCode() != "EUR" {
		t.Errorf("CurrencyCode() = %q", s.CurrencyCode())
	}
}

func TestExpenseIsFromSubscription(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		e    Expense
		want bool
	}{
		{Expense{Comment: "Subscription: Netflix"}, true},
		{Expense{Comment: "Lunch", SourceSubscriptionID: &id}, true},
		{Expense{Comment: "My Subscription: note"}, false},
	}
	for i, tc := range cases {
		if got := tc.e.IsFromSubscription(); got != tc.want {
			t.Errorf("case %d: IsFromSubscription() = %v, want %v", i, got, tc.want)
		}
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := EmptySnapshot()
	s.Expenses = []Expense{{ID: uuid.New(), Amount: 1}}
	s.SavingGoals = []SavingGoal{{ID: uuid.New(), MonthlyContributions: Contributions{"2024-01": 5}}}

	c := s.Clone()
	c.Expenses[0].Amount = 99
	c.SavingGoals[0].MonthlyContributions["2024-01"] = 42

	if s.Expenses[0].Amount != 1 {
		t.Error("expense slice shared with clone")
	}
	if s.SavingGoals[0].MonthlyContributions["2024-01"] != 5 {
		t.Error("contribution map shared with clone")
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 6 {
		t.Fatalf("expected 6 default categories, got %d", len(cats))
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range cats {
		if err := c.Validate(); err != nil {
			t.Fatalf("invalid default category %q: %v", c.Name, err)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate id for %q", c.Name)
		}
		seen[c.ID] = true
	}
}
