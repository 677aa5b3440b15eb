package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMonthWindow is the number of months covered by MonthlySeries when
// the caller passes a non-positive count.
const DefaultMonthWindow = 6

var hundred = decimal.NewFromInt(100)

// Totals holds lifetime sums over a transaction list.
type Totals struct {
	TotalIncome   Money   `json:"totalIncome"`
	TotalExpenses Money   `json:"totalExpenses"`
	NetBalance    Money   `json:"netBalance"`
	SavingsRate   float64 `json:"savingsRate"` // percent of income kept
}

// MonthBucket accumulates income and expenses for one calendar month.
type MonthBucket struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"` // 1-12
	Label    string `json:"label"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string `json:"category"`
	Total    Money  `json:"totalAmount"`
}

// ComputeTotals sums income and expenses. The savings rate is zero when
// there is no income.
func ComputeTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case TypeIncome:
			t.TotalIncome = t.TotalIncome.Add(tx.Amount)
		case TypeExpense:
			t.TotalExpenses = t.TotalExpenses.Add(tx.Amount)
		}
	}
	t.NetBalance = t.TotalIncome.Sub(t.TotalExpenses)
	if t.TotalIncome.IsPositive() {
		rate := t.NetBalance.Decimal().Div(t.TotalIncome.Decimal()).Mul(hundred)
		t.SavingsRate = rate.InexactFloat64()
	}
	return t
}

// MonthlySeries buckets transactions into the monthCount calendar months
// ending at reference's month, oldest first. Transactions outside the window
// are ignored.
func MonthlySeries(txs []Transaction, monthCount int, reference time.Time) []MonthBucket {
	if monthCount <= 0 {
		monthCount = DefaultMonthWindow
	}
	start := time.Date(reference.Year(), reference.Month()-time.Month(monthCount-1), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]MonthBucket, monthCount)
	index := make(map[int]int, monthCount)
	for i := range buckets {
		m := start.AddDate(0, i, 0)
		buckets[i] = MonthBucket{
			Year:  m.Year(),
			Month: int(m.Month()),
			Label: m.Format("Jan"),
		}
		index[monthKey(m.Year(), int(m.Month()))] = i
	}

	for _, tx := range txs {
		i, ok := index[monthKey(tx.Date.Year(), tx.Date.Month())]
		if !ok || tx.Date.IsZero() {
			continue
		}
		switch tx.Type {
		case TypeIncome:
			buckets[i].Income = buckets[i].Income.Add(tx.Amount)
		case TypeExpense:
			buckets[i].Expenses = buckets[i].Expenses.Add(tx.Amount)
		}
	}
	return buckets
}

func monthKey(year, month int) int {
	return year*12 + month - 1
}

// CategoryBreakdown sums expenses per category, largest first. Categories
// with equal totals keep the order in which they first appear in txs.
func CategoryBreakdown(txs []Transaction) []CategoryAmount {
	var out []CategoryAmount
	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Type != TypeExpense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryAmount{Category: tx.Category})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total.GreaterThan(out[b].Total)
	})
	return out
}

// CategoryShare returns c's share of the summed breakdown as a rounded
// percentage, or 0 when the breakdown sums to zero.
func CategoryShare(c CategoryAmount, all []CategoryAmount) int {
	var sum Money
	for _, a := range all {
		sum = sum.Add(a.Total)
	}
	if !sum.IsPositive() {
		return 0
	}
	share := c.Total.Decimal().Div(sum.Decimal()).Mul(hundred).Round(0)
	return int(share.IntPart())
}

// TopCategoryShare is CategoryShare of the largest category.
func TopCategoryShare(all []CategoryAmount) int {
	if len(all) == 0 {
		return 0
	}
	return CategoryShare(all[0], all)
}

// Filter keeps transactions whose merchant or category contains query,
// ignoring case. An empty query returns txs unchanged.
func Filter(txs []Transaction, query string) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Merchant), q) ||
			strings.Contains(strings.ToLower(tx.Category), q) {
			out = append(out, tx)
		}
	}
	return out
}
