package model

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format bank feeds use.
const DateLayout = "2006-01-02"

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date         time.Time `json:"date"`
	ID           string    `json:"transaction_id"`
	Name         string    `json:"name"`          // Raw transaction description
	MerchantName string    `json:"merchant_name"` // Cleaned merchant name
	AccountID    string    `json:"account_id"`
	Hash         string    `json:"-"`
	Amount       float64   `json:"amount"`

	// Category hints from source (e.g., Plaid's category hierarchy)
	Category []string `json:"category"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format(DateLayout),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// PrimaryCategory returns the top-level category hint, or "Misc" when the
// source provided none.
func (t *Transaction) PrimaryCategory() string {
	if len(t.Category) == 0 || t.Category[0] == "" {
		return "Misc"
	}
	return t.Category[0]
}

// DisplayName returns the raw name, falling back to the merchant name.
func (t *Transaction) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return "Unknown"
}

// IsExpense reports whether money left the account. Amounts follow the
// Plaid convention where outflows are positive.
func (t *Transaction) IsExpense() bool {
	return t.Amount > 0
}

// Expenses returns only the outflow transactions.
func Expenses(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for i := range txns {
		if txns[i].IsExpense() {
			out = append(out, txns[i])
		}
	}
	return out
}

// UnmarshalJSON accepts either a calendar date ("2006-01-02") or an RFC 3339
// timestamp for the date field.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Date = time.Time{}
	if aux.Date == "" {
		return nil
	}
	if d, err := time.Parse(DateLayout, aux.Date); err == nil {
		t.Date = d
		return nil
	}
	d, err := time.Parse(time.RFC3339, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid transaction date %q: %w", aux.Date, err)
	}
	t.Date = d
	return nil
}
