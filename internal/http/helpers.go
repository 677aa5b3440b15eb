package http

import (
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// formattedTotals renders totals in the configured currency.
type formattedTotals struct {
	TotalIncome   string `json:"totalIncome"`
	TotalExpenses string `json:"totalExpenses"`
	NetBalance    string `json:"netBalance"`
	SavingsRate   string `json:"savingsRate"`
}

func formatTotals(t core.Totals, currency string) formattedTotals {
	return formattedTotals{
		TotalIncome:   t.TotalIncome.Format(currency),
		TotalExpenses: t.TotalExpenses.Format(currency),
		NetBalance:    t.NetBalance.Format(currency),
		SavingsRate:   strconv.FormatFloat(t.SavingsRate, 'f', 1, 64) + "%",
	}
}
