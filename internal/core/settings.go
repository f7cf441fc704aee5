package core

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

const (
	PayDay      ResetType = "payDay"
	MonthlyDate ResetType = "monthlyDate"
)

// DefaultCurrency is used when no currency was ever chosen.
const DefaultCurrency = money.USD

type (
	ResetType string

	// Settings governs period boundaries for every query. It is passed
	// explicitly to the period functions rather than read from global state.
	Settings struct {
		ResetType             ResetType `json:"resetType"`
		PayDay                int       `json:"payDay"`
		MonthlyResetDate      int       `json:"monthlyResetDate"`
		NotificationsEnabled  bool      `json:"notificationsEnabled"`
		DailyNotificationTime time.Time `json:"dailyNotificationTime"`
		Currency              string    `json:"currency"`
	}
)

// DefaultSettings resets on the 1st with notifications off at 09:00.
func DefaultSettings() Settings {
	return Settings{
		ResetType:             PayDay,
		PayDay:                1,
		MonthlyResetDate:      1,
		NotificationsEnabled:  false,
		DailyNotificationTime: time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC),
		Currency:              DefaultCurrency,
	}
}

func (rt ResetType) IsValid() bool {
	switch rt {
	case PayDay, MonthlyDate:
		return true
	default:
		return false
	}
}

// DisplayName is the label shown in settings screens.
func (rt ResetType) DisplayName() string {
	switch rt {
	case PayDay:
		return "Pay Day"
	case MonthlyDate:
		return "Monthly Date"
	default:
		return string(rt)
	}
}

// ResetDay returns the day of month that starts a period under the active policy.
func (s Settings) ResetDay() int {
	if s.ResetType == MonthlyDate {
		return s.MonthlyResetDate
	}
	return s.PayDay
}

// CurrencyCode returns the ISO code, defaulting when unset or unknown.
func (s Settings) CurrencyCode() string {
	code := strings.ToUpper(strings.TrimSpace(s.Currency))
	if code == "" || money.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}

func (s Settings) Validate() error {
	if !s.ResetType.IsValid() {
		return ErrInvalidResetType
	}
	if s.PayDay < 1 || s.PayDay > 31 {
		return ErrInvalidResetDay
	}
	if s.MonthlyResetDate < 1 || s.MonthlyResetDate > 31 {
		return ErrInvalidResetDay
	}
	if s.Currency != "" && money.GetCurrency(strings.ToUpper(s.Currency)) == nil {
		return ErrInvalidCurrency
	}
	return nil
}
