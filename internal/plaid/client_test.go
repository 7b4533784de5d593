package plaid

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/origin/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
		},
		{
			name: "missing client ID",
			config: Config{
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid client ID is required",
		},
		{
			name: "missing secret",
			config: Config{
				ClientID:    "test-client-id",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid secret is required",
		},
		{
			name: "missing access token",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
			},
			wantErr: true,
			errMsg:  "plaid access token is required",
		},
		{
			name: "missing environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid environment is required",
		},
		{
			name: "invalid environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "development",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "invalid Plaid environment",
		},
		{
			name: "valid production environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "production",
				AccessToken: "test-token",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_Configured(t *testing.T) {
	assert.False(t, (&Config{Environment: "sandbox"}).Configured())
	assert.True(t, (&Config{AccessToken: "x"}).Configured())
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.Equal(t, "test-token", client.accessToken)
	assert.NotNil(t, client.logger)
	assert.NotNil(t, client.retryOpts)

	client, err = NewClient(Config{ClientID: "test-client-id"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}

	tests := []struct {
		startDate time.Time
		endDate   time.Time
		ctx       context.Context
		name      string
		errMsg    string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			startDate: time.Now().AddDate(0, -1, 0),
			endDate:   time.Now(),
			errMsg:    "context cannot be nil",
		},
		{
			name:      "start date after end date",
			ctx:       context.Background(),
			startDate: time.Now(),
			endDate:   time.Now().AddDate(0, -1, 0),
			errMsg:    "start date must be before end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetTransactions(tt.ctx, tt.startDate, tt.endDate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMapPlaidTransaction(t *testing.T) {
	client := &Client{logger: slog.Default()}

	var pt plaid.Transaction
	pt.SetTransactionId("txn-1")
	pt.SetAccountId("acc-1")
	pt.SetDate("2025-02-14")
	pt.SetName("STARBUCKS STORE 123456789")
	pt.SetAmount(5.5)
	pt.SetCategory([]string{"Food and Drink", "Coffee Shop"})

	tx := client.mapPlaidTransaction(pt)

	assert.Equal(t, "txn-1", tx.ID)
	assert.Equal(t, "acc-1", tx.AccountID)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "STARBUCKS STORE 123456789", tx.Name)
	assert.Equal(t, "Starbucks Store", tx.MerchantName)
	assert.InDelta(t, 5.5, tx.Amount, 0.001)
	assert.Equal(t, "Food and Drink", tx.PrimaryCategory())
	assert.Equal(t, tx.GenerateHash(), tx.Hash)
}

func TestMapPlaidTransaction_BadDate(t *testing.T) {
	client := &Client{logger: slog.Default()}

	var pt plaid.Transaction
	pt.SetDate("not-a-date")
	pt.SetName("Refund")
	pt.SetAmount(-20)

	tx := client.mapPlaidTransaction(pt)
	assert.True(t, tx.Date.IsZero())
	assert.InDelta(t, -20.0, tx.Amount, 0.001)
	assert.Equal(t, "Misc", tx.PrimaryCategory())
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"basic name", "Starbucks", "Starbucks"},
		{"lowercase to title case", "starbucks coffee", "Starbucks Coffee"},
		{"remove LLC suffix", "Amazon LLC", "Amazon"},
		{"remove Inc suffix", "Apple Inc", "Apple"},
		{"remove transaction ID", "PAYPAL 123456789", "Paypal"},
		{"preserve short numbers", "7-ELEVEN 2345", "7-Eleven 2345"},
		{"multiple cleanups", "amazon.com llc 987654321", "Amazon.Com"},
		{"extra spaces", "  Google   Cloud   ", "Google Cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanMerchantName(tt.input))
		})
	}
}

func TestMockClient(t *testing.T) {
	expected := []model.Transaction{{ID: "tx1", Name: "Test Transaction", Amount: 10.50}}
	mock := NewMockClient(expected...)

	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()

	txs, err := mock.GetTransactions(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, expected, txs)
	require.Len(t, mock.GetTransactionsCalls, 1)
	assert.Equal(t, start, mock.GetTransactionsCalls[0].StartDate)

	mock.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return nil, errors.New("item login required")
	}
	_, err = mock.GetTransactions(context.Background(), start, end)
	assert.EqualError(t, err, "item login required")
}
