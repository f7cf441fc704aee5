package memory

import (
	"context"
	"sync"

	"pocketbook/internal/core"
	ports "pocketbook/internal/sheets"
)

// Writer keeps the last exported rows per year in memory.
type Writer struct {
	mu     sync.Mutex
	sheets map[int][][]any
	writes int
}

var _ ports.StatsWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{sheets: make(map[int][][]any)}
}

func (w *Writer) WriteYearlyStats(ctx context.Context, year core.YearlyStats, months []core.MonthlyStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := ports.StatsRows(year, months)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheets[year.Year] = rows
	w.writes++
	return nil
}

// Rows returns a copy of the rows last written for year.
func (w *Writer) Rows(year int) ([][]any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.sheets[year]
	if !ok {
		return nil, false
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out, true
}

func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
