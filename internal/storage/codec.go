// Package storage persists ledger snapshots as one JSON payload per key.
package storage

import (
	"encoding/json"
	"fmt"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
)

// Persistence keys. Each collection is stored and decoded on its own so one
// corrupt payload never takes the others down with it.
const (
	KeyExpenses      = "expenses"
	KeyIncomes       = "incomes"
	KeyInvestments   = "investments"
	KeySubscriptions = "subscriptions"
	KeySavingGoals   = "savingGoals"
	KeyManualPLs     = "manualPLs"
	KeyCategories    = "categories"
	KeySettings      = "settings"
	KeyLastPeriodKey = "lastPeriodKey"
)

// Keys lists every persistence key in save order.
var Keys = []string{
	KeyExpenses,
	KeyIncomes,
	KeyInvestments,
	KeySubscriptions,
	KeySavingGoals,
	KeyManualPLs,
	KeyCategories,
	KeySettings,
	KeyLastPeriodKey,
}

// Encode splits a snapshot into per-key payloads.
func Encode(snap core.Snapshot) (map[string][]byte, error) {
	values := map[string]any{
		KeyExpenses:      snap.Expenses,
		KeyIncomes:       snap.Incomes,
		KeyInvestments:   snap.Investments,
		KeySubscriptions: snap.Subscriptions,
		KeySavingGoals:   snap.SavingGoals,
		KeyManualPLs:     snap.ManualPLs,
		KeyCategories:    snap.Categories,
		KeySettings:      snap.Settings,
		KeyLastPeriodKey: snap.LastPeriodKey,
	}

	out := make(map[string][]byte, len(values))
	for _, key := range Keys {
		blob, err := json.Marshal(values[key])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = blob
	}
	return out, nil
}

// Decode rebuilds a snapshot from per-key payloads. A missing key yields the
// empty value; a key that fails to decode is logged and replaced by the
// empty value (default settings for the settings key).
func Decode(payloads map[string][]byte, logger *log.Logger) core.Snapshot {
	if logger == nil {
		logger = log.Discard()
	}
	return core.Snapshot{
		Expenses:      decodeKey[[]core.Expense](payloads, KeyExpenses, nil, logger),
		Incomes:       decodeKey[[]core.Income](payloads, KeyIncomes, nil, logger),
		Investments:   decodeKey[[]core.Investment](payloads, KeyInvestments, nil, logger),
		Subscriptions: decodeKey[[]core.Subscription](payloads, KeySubscriptions, nil, logger),
		SavingGoals:   decodeKey[[]core.SavingGoal](payloads, KeySavingGoals, nil, logger),
		ManualPLs:     decodeKey[[]core.ManualPL](payloads, KeyManualPLs, nil, logger),
		Categories:    decodeKey[[]core.Category](payloads, KeyCategories, nil, logger),
		Settings:      decodeKey(payloads, KeySettings, core.DefaultSettings(), logger),
		LastPeriodKey: decodeKey(payloads, KeyLastPeriodKey, "", logger),
	}
}

func decodeKey[T any](payloads map[string][]byte, key string, fallback T, logger *log.Logger) T {
	blob, ok := payloads[key]
	if !ok || len(blob) == 0 {
		return fallback
	}
	v := fallback
	if err := json.Unmarshal(blob, &v); err != nil {
		logger.Warn("Discarding unreadable payload",
			log.NewFields().WithCollection(key).WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return fallback
	}
	return v
}
