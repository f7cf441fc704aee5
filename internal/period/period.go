// Package period maps dates onto budget periods.
//
// A budget period starts on the configured reset day of a month and runs until
// the next reset. When the reset day does not exist in a month (31 in
// February) it is clamped to the month's last day, for every month alike.
package period

import (
	"sort"
	"time"

	"pocketbook/internal/core"
)

// KeyLayout formats period keys and labels; keys sort chronologically.
const KeyLayout = "2006-01"

// DisplayLayout is the human readable label of a period ("March 2024").
const DisplayLayout = "January 2006"

// Start returns the first instant of the budget period containing t.
// Invalid reset days degrade to returning t unchanged.
func Start(t time.Time, s core.Settings) time.Time {
	resetDay := s.ResetDay()
	if t.IsZero() || resetDay < 1 || resetDay > 31 {
		return t
	}

	year, month, day := t.Date()
	if day >= clampDay(year, month, resetDay) {
		return midnight(year, month, clampDay(year, month, resetDay), t.Location())
	}

	prevYear, prevMonth := year, month-1
	if prevMonth < time.January {
		prevMonth = time.December
		prevYear--
	}
	return midnight(prevYear, prevMonth, clampDay(prevYear, prevMonth, resetDay), t.Location())
}

// End returns the first instant of the period after the one containing t.
func End(t time.Time, s core.Settings) time.Time {
	resetDay := s.ResetDay()
	if t.IsZero() || resetDay < 1 || resetDay > 31 {
		return t
	}
	start := Start(t, s)
	year, month, _ := start.Date()
	nextYear, nextMonth := year, month+1
	if nextMonth > time.December {
		nextMonth = time.January
		nextYear++
	}
	return midnight(nextYear, nextMonth, clampDay(nextYear, nextMonth, resetDay), start.Location())
}

// Label returns the sortable "YYYY-MM" label of the period containing t.
func Label(t time.Time, s core.Settings) string {
	return Start(t, s).Format(KeyLayout)
}

// DisplayLabel returns "January 2006" for the period containing t.
func DisplayLabel(t time.Time, s core.Settings) string {
	return Start(t, s).Format(DisplayLayout)
}

// CalendarKey is the plain calendar month of t, independent of any reset policy.
func CalendarKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// CalendarMonth returns the half-open window [first day, first day of next month).
func CalendarMonth(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := midnight(year, month, 1, loc)
	return start, start.AddDate(0, 1, 0)
}

// InCurrentView reports whether d falls in [Start(now), now], both ends inclusive.
func InCurrentView(d, now time.Time, s core.Settings) bool {
	start := Start(now, s)
	return !d.Before(start) && !d.After(now)
}

// GroupExpenses buckets expenses by budget period, newest period first.
func GroupExpenses(expenses []core.Expense, s core.Settings) []core.PeriodGroup {
	byLabel := make(map[string]*core.PeriodGroup)
	for _, e := range expenses {
		start := Start(e.Date, s)
		label := start.Format(KeyLayout)
		g, ok := byLabel[label]
		if !ok {
			g = &core.PeriodGroup{Label: label, Start: start}
			byLabel[label] = g
		}
		g.Expenses = append(g.Expenses, e)
		g.Total += e.Amount
	}

	groups := make([]core.PeriodGroup, 0, len(byLabel))
	for _, g := range byLabel {
		sort.SliceStable(g.Expenses, func(i, j int) bool {
			return g.Expenses[i].Date.After(g.Expenses[j].Date)
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label > groups[j].Label })
	return groups
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(year int, month time.Month, day int) int {
	if last := DaysIn(year, month); day > last {
		return last
	}
	return day
}

func midnight(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
