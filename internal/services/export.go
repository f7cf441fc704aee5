package services

import (
	"context"
	"fmt"

	"pocketbook/internal/log"
	"pocketbook/internal/sheets"
)

// ExportYear writes the yearly and monthly statistics of year to w.
func (l *LedgerService) ExportYear(ctx context.Context, w sheets.StatsWriter, year int) error {
	months := l.stats.MonthlyStats(year)
	yearly := l.stats.YearlyStats(year)
	if err := w.WriteYearlyStats(ctx, yearly, months); err != nil {
		return fmt.Errorf("export %d stats: %w", year, err)
	}
	l.logger.InfoContext(ctx, "Exported yearly stats",
		log.FieldOperation, log.OpExport,
		log.FieldYear, year,
		log.FieldAmount, yearly.TotalProfitLoss)
	return nil
}
