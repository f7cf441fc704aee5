package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

// ReminderTitle heads the daily balance notification.
const ReminderTitle = "Pocketbook Daily Update"

// Reminder formats the daily balance message.
func Reminder(balance float64, currency string) string {
	if balance >= 0 {
		return fmt.Sprintf("Great job! You have %s left this month.", FormatAmount(balance, currency))
	}
	return fmt.Sprintf("You're %s over budget this month. Consider reviewing your expenses.",
		FormatAmount(math.Abs(balance), currency))
}

// FormatAmount renders amount with the currency's symbol and minor units.
// Unknown currency codes fall back to the default currency.
func FormatAmount(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		code = core.DefaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
