package core

// SeedTransactions returns the example transactions used when no valid
// persisted list exists. Every call returns a fresh slice.
func SeedTransactions() []Transaction {
	return []Transaction{
		{ID: "tx-1", Amount: NewMoney(5200), Status: StatusPaid, Merchant: "Monthly Salary", Category: "Income", Date: NewDate(2026, 2, 1), Type: TypeIncome},
		{ID: "tx-2", Amount: NewMoney(199), Status: StatusPaid, Merchant: "Apple Store", Category: "Electronics", Date: NewDate(2026, 2, 15), Type: TypeExpense},
		{ID: "tx-3", Amount: NewMoney(5.5), Status: StatusPaid, Merchant: "Starbucks", Category: "Food & Drinks", Date: NewDate(2026, 2, 14), Type: TypeExpense},
		{ID: "tx-4", Amount: NewMoney(1200), Status: StatusPending, Merchant: "Monthly Rent", Category: "Housing", Date: NewDate(2026, 2, 1), Type: TypeExpense},
		{ID: "tx-5", Amount: NewMoney(45.99), Status: StatusPaid, Merchant: "Amazon", Category: "Shopping", Date: NewDate(2026, 2, 12), Type: TypeExpense},
		{ID: "tx-6", Amount: NewMoney(15.99), Status: StatusFailed, Merchant: "Netflix", Category: "Entertainment", Date: NewDate(2026, 2, 10), Type: TypeExpense},
	}
}
