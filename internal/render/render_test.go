package render

import (
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func TestTransactions(t *testing.T) {
	var b strings.Builder
	Transactions(&b, core.SeedTransactions(), "", "USD")
	out := b.String()

	for _, want := range []string{
		"# Transactions",
		"| 2026-02-01 | Monthly Salary | Income | paid | +$5,200.00 | `tx-1` |",
		"| 2026-02-14 | Starbucks | Food & Drinks | paid | -$5.50 | `tx-3` |",
		"6 transaction(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTransactionsEmptyAndQuery(t *testing.T) {
	var b strings.Builder
	Transactions(&b, nil, "zzz", "USD")
	out := b.String()
	if !strings.Contains(out, `matching "zzz"`) || !strings.Contains(out, "No transactions found") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCellEscapesPipes(t *testing.T) {
	if got := cell("a|b\n c"); got != `a\|b c` {
		t.Fatalf("cell() = %q", got)
	}
}

func TestSummary(t *testing.T) {
	var b strings.Builder
	Summary(&b, core.ComputeTotals(core.SeedTransactions()), "USD")
	out := b.String()
	for _, want := range []string{"$5,200.00", "$1,466.48", "**$3,733.52**", "71.8%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMonthlyAndCategories(t *testing.T) {
	ref := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	snap := services.Build(core.SeedTransactions(), 1, 3, ref)

	var b strings.Builder
	Dashboard(&b, snap, "EUR")
	out := b.String()
	for _, want := range []string{
		"# Last 3 months",
		"| Dec 2025 |",
		"| Feb 2026 |",
		"| Housing |",
		"| 82% |",
		"Top category: **Housing** with 82% of spending",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCategoriesEmpty(t *testing.T) {
	var b strings.Builder
	Categories(&b, nil, "USD")
	if !strings.Contains(b.String(), "No expenses recorded") {
		t.Fatalf("unexpected output:\n%s", b.String())
	}
}
