package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/origin/internal/model"
)

// Category names used across tests.
const (
	CategoryFoodDining    = "Food and Drink"
	CategoryShopping      = "Shops"
	CategoryTravel        = "Travel"
	CategoryEntertainment = "Recreation"
	CategoryIncome        = "Income"
)

// TransactionBuilder builds transaction fixtures with sequential ids and
// dates counting back from a fixed day.
type TransactionBuilder struct {
	start time.Time
	txns  []model.Transaction
}

// NewTransactionBuilder starts a builder whose first transaction is dated start.
func NewTransactionBuilder(start time.Time) *TransactionBuilder {
	return &TransactionBuilder{start: start}
}

// WithExpense adds an outflow; amount is positive.
func (b *TransactionBuilder) WithExpense(merchant string, amount float64, category string) *TransactionBuilder {
	return b.add(merchant, amount, category)
}

// WithIncome adds an inflow; amount is positive and stored negated.
func (b *TransactionBuilder) WithIncome(name string, amount float64) *TransactionBuilder {
	return b.add(name, -amount, CategoryIncome)
}

func (b *TransactionBuilder) add(name string, amount float64, category string) *TransactionBuilder {
	n := len(b.txns)
	t := model.Transaction{
		ID:           fmt.Sprintf("txn-%03d", n+1),
		Date:         b.start.AddDate(0, 0, -n),
		Name:         name,
		MerchantName: name,
		Amount:       amount,
		AccountID:    "acct-1",
	}
	if category != "" {
		t.Category = []string{category}
	}
	t.Hash = t.GenerateHash()
	b.txns = append(b.txns, t)
	return b
}

// Build returns a copy of the transactions added so far.
func (b *TransactionBuilder) Build() []model.Transaction {
	return append([]model.Transaction{}, b.txns...)
}

// TypicalMonth is a small mixed set of purchases and one paycheck.
func TypicalMonth(start time.Time) []model.Transaction {
	return NewTransactionBuilder(start).
		WithExpense("Starbucks", 6.45, CategoryFoodDining).
		WithExpense("Amazon", 129.99, CategoryShopping).
		WithIncome("Payroll", 2500).
		WithExpense("Delta Air Lines", 412.20, CategoryTravel).
		WithExpense("AMC Theatres", 31.00, CategoryEntertainment).
		Build()
}
