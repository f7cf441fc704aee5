package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
)

func TestCurrentBalance_PayDayExample(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(15))
	stats := NewStatisticsService(st, time.UTC, nil)

	if _, err := st.AddIncome(ctx, core.Income{Amount: 1000, Date: date(2024, 2, 20)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 300, Comment: "rent share", Date: date(2024, 3, 1)}); err != nil {
		t.Fatal(err)
	}
	// previous period and future entries are excluded
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 999, Date: date(2024, 2, 14)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 50, Date: date(2024, 3, 12)}); err != nil {
		t.Fatal(err)
	}

	if got := stats.CurrentBalance(march10); got != 700 {
		t.Errorf("CurrentBalance() = %v, want 700", got)
	}
	if got := stats.CurrentPeriodIncome(march10); got != 1000 {
		t.Errorf("CurrentPeriodIncome() = %v, want 1000", got)
	}
	if got := len(stats.CurrentPeriodExpenses(march10)); got != 1 {
		t.Errorf("CurrentPeriodExpenses() returned %d, want 1", got)
	}
}

func TestCurrentPeriodInvestmentTotal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(1))
	stats := NewStatisticsService(st, time.UTC, nil)

	for _, inv := range []core.Investment{
		{Amount: 200, Date: date(2024, 3, 2)},
		{Amount: 100, Date: date(2024, 2, 28)},
	} {
		if _, err := st.AddInvestment(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}
	if got := stats.CurrentPeriodInvestmentTotal(march10); got != 200 {
		t.Errorf("CurrentPeriodInvestmentTotal() = %v, want 200", got)
	}
}

func TestExpensesByCategory(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(1))
	stats := NewStatisticsService(st, time.UTC, nil)

	food, err := st.AddCategory(ctx, core.Category{Name: "Food"})
	if err != nil {
		t.Fatal(err)
	}
	gone := uuid.New()
	foodID := food.ID

	for _, e := range []core.Expense{
		{Amount: 20, Date: date(2024, 3, 2), CategoryID: &foodID},
		{Amount: 15, Date: date(2024, 3, 3), CategoryID: &foodID},
		{Amount: 50, Date: date(2024, 3, 4), CategoryID: &gone},
		{Amount: 5, Date: date(2024, 3, 5)},
	} {
		if _, err := st.AddExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got := stats.ExpensesByCategory(march10)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Uncategorized" || got[0].Amount != 55 || got[0].CategoryID != nil {
		t.Errorf("first group = %+v, want Uncategorized 55", got[0])
	}
	if got[1].Name != "Food" || got[1].Amount != 35 {
		t.Errorf("second group = %+v, want Food 35", got[1])
	}
}

func TestMonthlyStats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(15))
	stats := NewStatisticsService(st, time.UTC, nil)

	if _, err := st.AddIncome(ctx, core.Income{Amount: 2000, Date: date(2024, 1, 31)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 400, Date: date(2024, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 100, Date: date(2024, 2, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddInvestment(ctx, core.Investment{Amount: 300, Date: date(2024, 1, 10)}); err != nil {
		t.Fatal(err)
	}

	months := stats.MonthlyStats(2024)
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}

	jan := months[0]
	if jan.Income != 2000 || jan.Expenses != 400 || jan.Investments != 300 || jan.ProfitLoss != 1600 {
		t.Errorf("January = %+v", jan)
	}
	if months[1].ProfitLoss != -100 {
		t.Errorf("February ProfitLoss = %v, want -100", months[1].ProfitLoss)
	}
	if months[5].HasData() {
		t.Errorf("June should have no data: %+v", months[5])
	}
}

func TestMonthlyStats_ManualOverride(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(1))
	stats := NewStatisticsService(st, time.UTC, nil)

	if _, err := st.AddIncome(ctx, core.Income{Amount: 5000, Date: date(2024, 3, 2)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, core.Expense{Amount: 10, Date: date(2024, 3, 3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddManualPL(ctx, core.NewDirectPL(3, 2024, 500, 0, "")); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddManualPL(ctx, core.NewDerivedPL(4, 2024, 1200, 700, 50, "")); err != nil {
		t.Fatal(err)
	}

	months := stats.MonthlyStats(2024)
	if m := months[2]; m.ProfitLoss != 500 || !m.Manual {
		t.Errorf("March = %+v, want manual profit 500", m)
	}
	if m := months[3]; m.ProfitLoss != 500 || m.Income != 1200 || m.Expenses != 700 || m.Investments != 50 {
		t.Errorf("April = %+v, want derived override", m)
	}
}

func TestAggregateYear(t *testing.T) {
	pls := []float64{100, -50, 0, 100, -50, 0, 0, 0, 0, 0, 0, 0}
	months := make([]core.MonthlyStats, 12)
	for i, pl := range pls {
		months[i] = core.MonthlyStats{Year: 2024, Month: i + 1, ProfitLoss: pl}
		if pl > 0 {
			months[i].Income = pl
		} else if pl < 0 {
			months[i].Expenses = -pl
		}
	}
	months[0].Investments = 40

	y := AggregateYear(2024, months)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"total profit", y.TotalProfitLoss, 100},
		{"total income", y.TotalIncome, 200},
		{"total expenses", y.TotalExpenses, 100},
		{"profit without investments", y.TotalProfitLossWithoutInvestments, 60},
		{"average", y.AverageMonthlyPL, 25},
		{"average without investments", y.AverageMonthlyPLWithoutInvestments, 15},
		{"best month profit", y.BestMonthPL, 100},
		{"worst month profit", y.WorstMonthPL, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if y.MonthsWithData != 4 {
		t.Errorf("MonthsWithData = %d, want 4", y.MonthsWithData)
	}
	if y.BestMonth != 1 || y.BestMonthName() != "January" {
		t.Errorf("BestMonth = %d, want first of the tied months", y.BestMonth)
	}
	if y.WorstMonth != 2 {
		t.Errorf("WorstMonth = %d, want 2", y.WorstMonth)
	}
}

func TestAggregateYear_NoData(t *testing.T) {
	months := make([]core.MonthlyStats, 12)
	for i := range months {
		months[i] = core.MonthlyStats{Year: 2023, Month: i + 1}
	}
	y := AggregateYear(2023, months)
	if y.AverageMonthlyPL != 0 || y.MonthsWithData != 0 {
		t.Errorf("empty year = %+v", y)
	}
	if y.BestMonth != 1 || y.WorstMonth != 1 {
		t.Errorf("ties on an empty year should resolve to January, got %d/%d", y.BestMonth, y.WorstMonth)
	}
}

func TestYearlyStats_InvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(1))
	stats := NewStatisticsService(st, time.UTC, nil)

	if got := stats.YearlyStats(2024).TotalIncome; got != 0 {
		t.Fatalf("TotalIncome = %v, want 0", got)
	}
	if _, err := st.AddIncome(ctx, core.Income{Amount: 10, Date: date(2024, 5, 5)}); err != nil {
		t.Fatal(err)
	}
	if got := stats.YearlyStats(2024).TotalIncome; got != 10 {
		t.Errorf("TotalIncome after write = %v, want 10", got)
	}
	if hits, _ := stats.yearly.Stats(); hits != 0 {
		t.Errorf("expected no cache hits across versions, got %d", hits)
	}
	stats.YearlyStats(2024)
	if hits, _ := stats.yearly.Stats(); hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", hits)
	}
}

func TestAvailableYears(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, payDaySettings(1))
	stats := NewStatisticsService(st, time.UTC, nil)

	if got := stats.AvailableYears(march10); len(got) != 1 || got[0] != 2024 {
		t.Fatalf("AvailableYears() on empty ledger = %v, want [2024]", got)
	}

	if _, err := st.AddExpense(ctx, core.Expense{Amount: 1, Date: date(2022, 6, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddInvestment(ctx, core.Investment{Amount: 1, Date: date(2023, 6, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddIncome(ctx, core.Income{Amount: 1, Date: date(2022, 1, 1)}); err != nil {
		t.Fatal(err)
	}

	got := stats.AvailableYears(march10)
	want := []int{2023, 2022}
	if len(got) != len(want) {
		t.Fatalf("AvailableYears() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AvailableYears()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
