// Package render writes transaction reports as markdown for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// cell escapes characters that would break a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// signed prefixes income with + and expenses with -, as in the list view.
func signed(tx core.Transaction, currency string) string {
	if tx.IsIncome() {
		return "+" + tx.Amount.Format(currency)
	}
	return "-" + tx.Amount.Format(currency)
}

func percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}

// Transactions writes the list, newest first. query is echoed in the title
// when non-empty.
func Transactions(w io.Writer, txs []core.Transaction, query, currency string) {
	if query != "" {
		fmt.Fprintf(w, "# Transactions matching %q\n\n", query)
	} else {
		fmt.Fprint(w, "# Transactions\n\n")
	}
	if len(txs) == 0 {
		fmt.Fprint(w, "*No transactions found.*\n")
		return
	}

	fmt.Fprint(w, "| Date | Merchant | Category | Status | Amount | ID |\n")
	fmt.Fprint(w, "|:-----|:---------|:---------|:-------|-------:|:---|\n")
	for _, tx := range txs {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | `%s` |\n",
			tx.Date, cell(tx.Merchant), cell(tx.Category), tx.Status, signed(tx, currency), tx.ID)
	}
	fmt.Fprintf(w, "\n%d transaction(s)\n", len(txs))
}

// Added confirms a newly created transaction.
func Added(w io.Writer, tx core.Transaction, currency string) {
	fmt.Fprintf(w, "Added **%s** (%s) %s on %s, id `%s`\n",
		cell(tx.Merchant), cell(tx.Category), signed(tx, currency), tx.Date, tx.ID)
}

// Summary writes the lifetime totals.
func Summary(w io.Writer, t core.Totals, currency string) {
	fmt.Fprint(w, "# Summary\n\n")
	fmt.Fprint(w, "| | Amount |\n")
	fmt.Fprint(w, "|:--|--:|\n")
	fmt.Fprintf(w, "| Total income | %s |\n", t.TotalIncome.Format(currency))
	fmt.Fprintf(w, "| Total expenses | %s |\n", t.TotalExpenses.Format(currency))
	fmt.Fprintf(w, "| **Net balance** | **%s** |\n", t.NetBalance.Format(currency))
	fmt.Fprintf(w, "| Savings rate | %s |\n", percent(t.SavingsRate))
}

// Monthly writes the income and expenses of each month, oldest first.
func Monthly(w io.Writer, buckets []core.MonthBucket, currency string) {
	fmt.Fprintf(w, "# Last %d months\n\n", len(buckets))
	fmt.Fprint(w, "| Month | Income | Expenses | Net |\n")
	fmt.Fprint(w, "|:------|-------:|---------:|----:|\n")
	for _, b := range buckets {
		fmt.Fprintf(w, "| %s %d | %s | %s | %s |\n",
			b.Label, b.Year,
			b.Income.Format(currency), b.Expenses.Format(currency),
			b.Income.Sub(b.Expenses).Format(currency))
	}
}

// Categories writes the expense breakdown, largest first.
func Categories(w io.Writer, shares []services.CategoryShare, currency string) {
	fmt.Fprint(w, "# Spending by category\n\n")
	if len(shares) == 0 {
		fmt.Fprint(w, "*No expenses recorded.*\n")
		return
	}
	fmt.Fprint(w, "| Category | Amount | Share |\n")
	fmt.Fprint(w, "|:---------|-------:|------:|\n")
	for _, s := range shares {
		fmt.Fprintf(w, "| %s | %s | %d%% |\n", cell(s.Category), s.Total.Format(currency), s.Share)
	}
	fmt.Fprintf(w, "\nTop category: **%s** with %d%% of spending\n", cell(shares[0].Category), shares[0].Share)
}

// Dashboard writes every section of a snapshot.
func Dashboard(w io.Writer, snap services.Snapshot, currency string) {
	Summary(w, snap.Totals, currency)
	fmt.Fprintln(w)
	Monthly(w, snap.Monthly, currency)
	fmt.Fprintln(w)
	Categories(w, snap.Categories, currency)
}
