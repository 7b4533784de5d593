// Package simplefin fetches transactions through a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/service"
)

const defaultTimeout = 30 * time.Second

// Config selects how the client authenticates. AccessURL wins over Token;
// a Token is claimed once and the resulting access URL saved at StatePath.
type Config struct {
	HTTPClient *http.Client
	Token      string
	AccessURL  string
	StatePath  string
}

// Configured reports whether any SimpleFIN credentials were supplied.
func (c *Config) Configured() bool {
	return c.Token != "" || c.AccessURL != ""
}

// Client fetches transactions from every account behind one access URL.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	accessURL  string
}

// SimpleFIN API response types.
type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a client, claiming the setup token when needed.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	accessURL := cfg.AccessURL
	if accessURL == "" {
		statePath := cfg.StatePath
		if statePath == "" {
			var err error
			if statePath, err = DefaultStatePath(); err != nil {
				return nil, fmt.Errorf("failed to get state file path: %w", err)
			}
		}
		auth, err := LoadOrClaimAuth(ctx, httpClient, statePath, cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to load/claim auth: %w", err)
		}
		accessURL = auth.AccessURL
	}

	return &Client{
		accessURL:  strings.TrimSuffix(accessURL, "/"),
		httpClient: httpClient,
		logger:     slog.Default().With("component", "simplefin"),
	}, nil
}

// GetTransactions fetches posted transactions in [startDate, endDate].
// Amounts follow the Plaid convention: outflows are positive.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	// end-date is exclusive
	q.Set("end-date", strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("requesting transactions",
		"start_date", startDate.Format(model.DateLayout),
		"end_date", endDate.Format(model.DateLayout))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, msg := range set.Errors {
		c.logger.Warn("bridge reported an error", "message", msg)
	}

	var transactions []model.Transaction
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := time.Unix(tx.Posted, 0)
			if date.Before(startDate) || date.After(endDate) {
				continue
			}

			amount, err := parseAmount(tx.Amount)
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %q: %w", tx.Amount, err)
			}

			t := model.Transaction{
				ID:           acct.ID + "_" + tx.ID,
				Date:         date,
				Name:         tx.Description,
				MerchantName: normalizeMerchant(tx.Payee),
				Amount:       amount,
				AccountID:    acct.ID,
			}
			if t.MerchantName == "" {
				t.MerchantName = normalizeMerchant(tx.Description)
			}
			t.Hash = t.GenerateHash()
			transactions = append(transactions, t)
		}
	}

	c.logger.Info("fetched transactions", "count", len(transactions), "accounts", len(set.Accounts))
	return transactions, nil
}

// parseAmount converts a SimpleFIN decimal amount, where withdrawals are
// negative, into an outflow-positive amount.
func parseAmount(amountStr string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
	if err != nil {
		return 0, err
	}
	return -amount, nil
}

// normalizeMerchant trims corporate suffixes and title-cases the payee.
func normalizeMerchant(raw string) string {
	merchant := strings.TrimSpace(raw)
	for _, suffix := range []string{" LLC", " INC", " CORP"} {
		merchant = strings.TrimSuffix(merchant, suffix)
	}

	words := strings.Fields(strings.ToLower(merchant))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

var _ service.TransactionFetcher = (*Client)(nil)
