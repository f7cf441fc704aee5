package period

import (
	"testing"
	"time"

	"pocketbook/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func payDay(d int) core.Settings {
	s := core.DefaultSettings()
	s.ResetType = core.PayDay
	s.PayDay = d
	return s
}

func monthlyDate(d int) core.Settings {
	s := core.DefaultSettings()
	s.ResetType = core.MonthlyDate
	s.MonthlyResetDate = d
	s.PayDay = 1
	return s
}

func TestStart(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		settings core.Settings
		want     time.Time
	}{
		{
			name:     "before pay day rolls back a month",
			date:     time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC),
			settings: payDay(15),
			want:     day(2024, 2, 15),
		},
		{
			name:     "on pay day starts today",
			date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			settings: payDay(15),
			want:     day(2024, 3, 15),
		},
		{
			name:     "after pay day",
			date:     day(2024, 3, 28),
			settings: payDay(15),
			want:     day(2024, 3, 15),
		},
		{
			name:     "january wraps to previous december",
			date:     day(2024, 1, 3),
			settings: payDay(25),
			want:     day(2023, 12, 25),
		},
		{
			name:     "monthly date uses its own day",
			date:     day(2024, 6, 4),
			settings: monthlyDate(5),
			want:     day(2024, 5, 5),
		},
		{
			name:     "reset day 31 clamps to leap february",
			date:     day(2024, 3, 1),
			settings: payDay(31),
			want:     day(2024, 2, 29),
		},
		{
			name:     "reset day 31 clamps within short month",
			date:     day(2023, 2, 28),
			settings: payDay(31),
			want:     day(2023, 2, 28),
		},
		{
			name:     "reset day 30 in april",
			date:     day(2024, 4, 30),
			settings: payDay(30),
			want:     day(2024, 4, 30),
		},
		{
			name:     "first of month is calendar month",
			date:     time.Date(2024, 7, 31, 23, 59, 0, 0, time.UTC),
			settings: payDay(1),
			want:     day(2024, 7, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Start(tt.date, tt.settings)
			if !got.Equal(tt.want) {
				t.Errorf("Start(%s) = %s, want %s", tt.date.Format(time.RFC3339), got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

func TestStartInvalidSettingsFallsBackToInput(t *testing.T) {
	d := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, s := range []core.Settings{payDay(0), payDay(40), monthlyDate(-1)} {
		if got := Start(d, s); !got.Equal(d) {
			t.Errorf("Start with reset day %d = %s, want input date", s.ResetDay(), got)
		}
	}
}

func TestStartContainmentAndIdempotence(t *testing.T) {
	from := day(2023, 1, 1)
	for resetDay := 1; resetDay <= 31; resetDay++ {
		for _, s := range []core.Settings{payDay(resetDay), monthlyDate(resetDay)} {
			for d := from; d.Year() < 2025; d = d.Add(37 * time.Hour) {
				start := Start(d, s)
				if start.After(d) {
					t.Fatalf("reset %d: Start(%s) = %s is after the date", resetDay, d, start)
				}
				if again := Start(start, s); !again.Equal(start) {
					t.Fatalf("reset %d: Start not idempotent for %s: %s then %s", resetDay, d, start, again)
				}
				if end := End(d, s); !end.After(d) {
					t.Fatalf("reset %d: End(%s) = %s is not after the date", resetDay, d, end)
				}
			}
		}
	}
}

func TestEnd(t *testing.T) {
	if got := End(day(2024, 12, 20), payDay(15)); !got.Equal(day(2025, 1, 15)) {
		t.Errorf("End() = %s", got)
	}
	if got := End(day(2024, 1, 31), payDay(31)); !got.Equal(day(2024, 2, 29)) {
		t.Errorf("End() with clamp = %s", got)
	}
}

func TestLabels(t *testing.T) {
	s := payDay(15)
	if got := Label(day(2024, 3, 10), s); got != "2024-02" {
		t.Errorf("Label() = %q, want 2024-02", got)
	}
	if got := DisplayLabel(day(2024, 3, 10), s); got != "February 2024" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	if got := CalendarKey(day(2024, 3, 10)); got != "2024-03" {
		t.Errorf("CalendarKey() = %q", got)
	}
	if Label(day(2023, 12, 20), s) >= Label(day(2024, 1, 20), s) {
		t.Error("labels must sort chronologically")
	}
}

func TestCalendarMonth(t *testing.T) {
	start, end := CalendarMonth(2024, time.February, time.UTC)
	if !start.Equal(day(2024, 2, 1)) || !end.Equal(day(2024, 3, 1)) {
		t.Errorf("CalendarMonth() = [%s, %s)", start, end)
	}
	start, end = CalendarMonth(2024, time.December, time.UTC)
	if !start.Equal(day(2024, 12, 1)) || !end.Equal(day(2025, 1, 1)) {
		t.Errorf("CalendarMonth(december) = [%s, %s)", start, end)
	}
}

func TestInCurrentView(t *testing.T) {
	s := payDay(15)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		d    time.Time
		want bool
	}{
		{day(2024, 2, 15), true},
		{day(2024, 3, 5), true},
		{now, true},
		{day(2024, 2, 14), false},
		{day(2024, 3, 11), false}, // future within the period
	}
	for _, tc := range cases {
		if got := InCurrentView(tc.d, now, s); got != tc.want {
			t.Errorf("InCurrentView(%s) = %v, want %v", tc.d.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestGroupExpenses(t *testing.T) {
	s := payDay(15)
	expenses := []core.Expense{
		{Amount: 10, Date: day(2024, 2, 20)},
		{Amount: 5, Date: day(2024, 3, 14)},
		{Amount: 7, Date: day(2024, 3, 15)},
	}
	groups := GroupExpenses(expenses, s)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Label != "2024-03" || groups[0].Total != 7 {
		t.Errorf("newest group = %+v", groups[0])
	}
	if groups[1].Label != "2024-02" || groups[1].Total != 15 || len(groups[1].Expenses) != 2 {
		t.Errorf("older group = %+v", groups[1])
	}
	if !groups[1].Expenses[0].Date.Equal(day(2024, 3, 14)) {
		t.Error("expenses inside a group should be newest first")
	}
}
