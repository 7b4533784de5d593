package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_PrimaryCategory(t *testing.T) {
	tests := []struct {
		name     string
		category []string
		want     string
	}{
		{name: "hierarchy", category: []string{"Food and Drink", "Restaurants"}, want: "Food and Drink"},
		{name: "nil", category: nil, want: "Misc"},
		{name: "empty first", category: []string{""}, want: "Misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Category: tt.category}
			assert.Equal(t, tt.want, txn.PrimaryCategory())
		})
	}
}

func TestTransaction_GenerateHashStable(t *testing.T) {
	txn := Transaction{
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:       12.5,
		MerchantName: "Starbucks",
		AccountID:    "acc1",
	}
	other := txn
	other.Name = "different raw name"

	assert.Equal(t, txn.GenerateHash(), other.GenerateHash())
	other.Amount = 13
	assert.NotEqual(t, txn.GenerateHash(), other.GenerateHash())
}

func TestUserProfile_ContextSummary(t *testing.T) {
	var nilProfile *UserProfile
	assert.Empty(t, nilProfile.ContextSummary())

	p := &UserProfile{
		SpendingRegret: "Fast Food",
		UserGoals:      "Paying down debt.",
		TopCategories:  []string{"Food & Drink", "Shopping"},
	}
	assert.Equal(t,
		"Financial Goals: Paying down debt. Spending Regret: Fast Food. Top Categories: Food & Drink, Shopping.",
		p.ContextSummary())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleSystem.IsValid())
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("tool").IsValid())
}

func TestTransaction_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"calendar date", `{"date": "2025-03-09", "name": "Coffee", "amount": 4.5}`, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), false},
		{"timestamp", `{"date": "2025-03-09T10:00:00Z"}`, time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC), false},
		{"missing date", `{"name": "Coffee"}`, time.Time{}, false},
		{"garbage date", `{"date": "yesterday"}`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txn Transaction
			err := json.Unmarshal([]byte(tt.input), &txn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(txn.Date))
		})
	}
}

func TestTransaction_UnmarshalPlaidShape(t *testing.T) {
	input := `{"transaction_id": "tx9", "account_id": "a1", "date": "2025-01-02", "name": "UBER EATS", "merchant_name": "Uber Eats", "amount": 23.1, "category": ["Food and Drink", "Restaurants"]}`

	var txn Transaction
	require.NoError(t, json.Unmarshal([]byte(input), &txn))

	assert.Equal(t, "tx9", txn.ID)
	assert.Equal(t, "a1", txn.AccountID)
	assert.Equal(t, "Uber Eats", txn.MerchantName)
	assert.InDelta(t, 23.1, txn.Amount, 0.0001)
	assert.Equal(t, "Food and Drink", txn.PrimaryCategory())
	assert.True(t, txn.IsExpense())
}

func TestExpenses(t *testing.T) {
	txns := []Transaction{{ID: "out", Amount: 5}, {ID: "in", Amount: -100}, {ID: "zero"}}
	got := Expenses(txns)
	assert.Len(t, got, 1)
	assert.Equal(t, "out", got[0].ID)
}
