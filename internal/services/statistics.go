package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/period"
	"pocketbook/internal/store"
)

const (
	yearlyCacheSize = 16
	yearlyCacheTTL  = 10 * time.Minute
)

type yearlyKey struct {
	year    int
	version uint64
}

// StatisticsService computes balances and monthly/yearly roll-ups from the
// store. Yearly figures are memoized per store version.
type StatisticsService struct {
	store  *store.Store
	loc    *time.Location
	yearly *cache.LRUCache[yearlyKey, core.YearlyStats]
	logger *log.Logger
}

func NewStatisticsService(st *store.Store, loc *time.Location, logger *log.Logger) *StatisticsService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &StatisticsService{
		store:  st,
		loc:    loc,
		yearly: cache.NewLRUCache[yearlyKey, core.YearlyStats](yearlyCacheSize, yearlyCacheTTL),
		logger: logger.WithComponent(log.ComponentStatistics),
	}
}

// Cleaner exposes the yearly cache so a cache.Manager can sweep it.
func (s *StatisticsService) Cleaner() cache.Cleaner {
	return s.yearly
}

func (s *StatisticsService) CurrentPeriodIncome(now time.Time) float64 {
	snap := s.store.Snapshot()
	return currentIncome(&snap, now)
}

// CurrentPeriodExpenses returns the expenses dated in [period start, now].
func (s *StatisticsService) CurrentPeriodExpenses(now time.Time) []core.Expense {
	snap := s.store.Snapshot()
	var out []core.Expense
	for _, e := range snap.Expenses {
		if period.InCurrentView(e.Date, now, snap.Settings) {
			out = append(out, e)
		}
	}
	return out
}

func (s *StatisticsService) CurrentPeriodExpenseTotal(now time.Time) float64 {
	snap := s.store.Snapshot()
	return currentExpenseTotal(&snap, now)
}

func (s *StatisticsService) CurrentPeriodInvestmentTotal(now time.Time) float64 {
	snap := s.store.Snapshot()
	var total float64
	for _, inv := range snap.Investments {
		if period.InCurrentView(inv.Date, now, snap.Settings) {
			total += inv.Amount
		}
	}
	return total
}

// CurrentBalance is current-period income minus current-period expenses.
func (s *StatisticsService) CurrentBalance(now time.Time) float64 {
	snap := s.store.Snapshot()
	return currentBalance(&snap, now)
}

// ExpensesByCategory totals current-period expenses per category, largest
// first. Missing or deleted categories are grouped as Uncategorized.
func (s *StatisticsService) ExpensesByCategory(now time.Time) []core.CategoryAmount {
	snap := s.store.Snapshot()
	names := make(map[uuid.UUID]string, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
	}

	totals := make(map[string]*core.CategoryAmount)
	var order []string
	for _, e := range snap.Expenses {
		if !period.InCurrentView(e.Date, now, snap.Settings) {
			continue
		}
		name := store.UncategorizedName
		var id *uuid.UUID
		if e.CategoryID != nil {
			if n, ok := names[*e.CategoryID]; ok {
				name = n
				cid := *e.CategoryID
				id = &cid
			}
		}
		agg, ok := totals[name]
		if !ok {
			agg = &core.CategoryAmount{CategoryID: id, Name: name}
			totals[name] = agg
			order = append(order, name)
		}
		agg.Amount += e.Amount
	}

	out := make([]core.CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// MonthlyStats returns the twelve calendar months of year. A manual override
// replaces a month's computed figures entirely.
func (s *StatisticsService) MonthlyStats(year int) []core.MonthlyStats {
	snap := s.store.Snapshot()
	return monthlyStats(&snap, year, s.loc)
}

// YearlyStats aggregates MonthlyStats for year.
func (s *StatisticsService) YearlyStats(year int) core.YearlyStats {
	key := yearlyKey{year: year, version: s.store.Version()}
	if cached, ok := s.yearly.Get(key); ok {
		return cached
	}
	stats := AggregateYear(year, s.MonthlyStats(year))
	s.yearly.Set(key, stats)
	s.logger.Debug("Yearly stats computed", log.FieldYear, year, log.FieldVersion, key.version)
	return stats
}

// AvailableYears lists the years that have any expense, income or investment,
// newest first. An empty ledger yields the year of now.
func (s *StatisticsService) AvailableYears(now time.Time) []int {
	snap := s.store.Snapshot()
	seen := make(map[int]bool)
	add := func(d time.Time) { seen[d.In(s.loc).Year()] = true }
	for _, e := range snap.Expenses {
		add(e.Date)
	}
	for _, in := range snap.Incomes {
		add(in.Date)
	}
	for _, inv := range snap.Investments {
		add(inv.Date)
	}
	if len(seen) == 0 {
		return []int{now.In(s.loc).Year()}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func currentIncome(snap *core.Snapshot, now time.Time) float64 {
	var total float64
	for _, in := range snap.Incomes {
		if period.InCurrentView(in.Date, now, snap.Settings) {
			total += in.Amount
		}
	}
	return total
}

func currentExpenseTotal(snap *core.Snapshot, now time.Time) float64 {
	var total float64
	for _, e := range snap.Expenses {
		if period.InCurrentView(e.Date, now, snap.Settings) {
			total += e.Amount
		}
	}
	return total
}

func currentBalance(snap *core.Snapshot, now time.Time) float64 {
	return currentIncome(snap, now) - currentExpenseTotal(snap, now)
}

func monthlyStats(snap *core.Snapshot, year int, loc *time.Location) []core.MonthlyStats {
	out := make([]core.MonthlyStats, 12)
	for m := 1; m <= 12; m++ {
		stats := core.MonthlyStats{Year: year, Month: m}

		if pl, ok := findManualPL(snap.ManualPLs, m, year); ok {
			stats.Income = pl.EffectiveIncome()
			stats.Expenses = pl.EffectiveExpenses()
			stats.Investments = pl.Investments
			stats.ProfitLoss = pl.EffectiveProfitLoss()
			stats.Manual = true
			out[m-1] = stats
			continue
		}

		start, end := period.CalendarMonth(year, time.Month(m), loc)
		in := func(d time.Time) bool { return !d.Before(start) && d.Before(end) }
		for _, e := range snap.Expenses {
			if in(e.Date) {
				stats.Expenses += e.Amount
			}
		}
		for _, i := range snap.Incomes {
			if in(i.Date) {
				stats.Income += i.Amount
			}
		}
		for _, inv := range snap.Investments {
			if in(inv.Date) {
				stats.Investments += inv.Amount
			}
		}
		stats.ProfitLoss = stats.Income - stats.Expenses
		out[m-1] = stats
	}
	return out
}

func findManualPL(items []core.ManualPL, month, year int) (core.ManualPL, bool) {
	for _, pl := range items {
		if pl.Month == month && pl.Year == year {
			return pl, true
		}
	}
	return core.ManualPL{}, false
}

// AggregateYear rolls twelve months into yearly totals. Averages only count
// months with data; best and worst month ties go to the earliest month.
func AggregateYear(year int, months []core.MonthlyStats) core.YearlyStats {
	y := core.YearlyStats{Year: year}
	for i, m := range months {
		y.TotalIncome += m.Income
		y.TotalExpenses += m.Expenses
		y.TotalInvestments += m.Investments
		y.TotalProfitLoss += m.ProfitLoss
		if m.HasData() {
			y.MonthsWithData++
		}
		if i == 0 || m.ProfitLoss > y.BestMonthPL {
			y.BestMonth, y.BestMonthPL = m.Month, m.ProfitLoss
		}
		if i == 0 || m.ProfitLoss < y.WorstMonthPL {
			y.WorstMonth, y.WorstMonthPL = m.Month, m.ProfitLoss
		}
	}
	y.TotalProfitLossWithoutInvestments = y.TotalProfitLoss - y.TotalInvestments
	if y.MonthsWithData > 0 {
		n := float64(y.MonthsWithData)
		y.AverageMonthlyPL = y.TotalProfitLoss / n
		y.AverageMonthlyPLWithoutInvestments = y.TotalProfitLossWithoutInvestments / n
	}
	return y
}
