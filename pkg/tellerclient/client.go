/**
 * @description
 * This package provides a client for the Teller API. Teller authenticates with
 * the enrollment access token as the basic-auth username and returns amounts
 * as string-encoded decimals, which this client parses during normalization.
 *
 * @dependencies
 * - context, encoding/json, fmt, io, log, net/http, net/url, strconv, time: Standard Go libraries.
 * - internal/domain: Teller wire models and normalized provider records.
 */

package tellerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/monetra/sync-service/internal/domain"
)

// Client is a client for the Teller API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Teller API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider identifies this client to the sync orchestrator.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderTeller
}

// GetAccounts fetches the raw account set for an enrollment.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]domain.TellerAccount, error) {
	var accounts []domain.TellerAccount
	if err := c.get(ctx, accessToken, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance fetches the balance for one account.
func (c *Client) GetBalance(ctx context.Context, accessToken, accountID string) (*domain.TellerBalance, error) {
	var balance domain.TellerBalance
	if err := c.get(ctx, accessToken, "/accounts/"+url.PathEscape(accountID)+"/balances", &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// ListAccounts returns the enrollment's accounts normalized for
// reconciliation, with the ledger balance resolved per account.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]domain.ProviderAccount, error) {
	raw, err := c.GetAccounts(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.ProviderAccount, 0, len(raw))
	for _, account := range raw {
		normalized := domain.ProviderAccount{
			ExternalID:  account.ID,
			Name:        account.Name,
			RawType:     account.Type,
			RawSubtype:  account.Subtype,
			Currency:    account.Currency,
			Institution: account.Institution.Name,
			Mask:        account.LastFour,
		}

		balance, err := c.GetBalance(ctx, accessToken, account.ID)
		if err != nil {
			// A missing balance should not drop the account from reconciliation.
			log.Printf("level=warn component=tellerclient msg=\"balance fetch failed; reconciling with zero balance\" account_id=%s err=%v", account.ID, err)
		} else if balance.Ledger != nil {
			parsed, parseErr := strconv.ParseFloat(*balance.Ledger, 64)
			if parseErr != nil {
				log.Printf("level=warn component=tellerclient msg=\"unparseable ledger balance\" account_id=%s value=%q", account.ID, *balance.Ledger)
			} else {
				normalized.Balance = parsed
			}
		}

		accounts = append(accounts, normalized)
	}
	return accounts, nil
}

// ListTransactions returns the account's transactions inside [start, end],
// normalized. Pending records are excluded; only posted transactions enter the
// ledger.
func (c *Client) ListTransactions(ctx context.Context, accessToken, externalAccountID string, start, end time.Time) ([]domain.ProviderTransaction, error) {
	path := fmt.Sprintf("/accounts/%s/transactions?from_date=%s&to_date=%s",
		url.PathEscape(externalAccountID), start.Format("2006-01-02"), end.Format("2006-01-02"))

	var raw []domain.TellerTransaction
	if err := c.get(ctx, accessToken, path, &raw); err != nil {
		return nil, err
	}

	transactions := make([]domain.ProviderTransaction, 0, len(raw))
	for _, t := range raw {
		if t.Status == "pending" {
			continue
		}
		amount, err := strconv.ParseFloat(t.Amount, 64)
		if err != nil {
			log.Printf("level=warn component=tellerclient msg=\"skipping transaction with unparseable amount\" transaction_id=%s amount=%q", t.ID, t.Amount)
			continue
		}
		date, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			log.Printf("level=warn component=tellerclient msg=\"skipping transaction with unparseable date\" transaction_id=%s date=%q", t.ID, t.Date)
			continue
		}

		var categories []string
		if t.Details.Category != nil && *t.Details.Category != "" {
			categories = []string{*t.Details.Category}
		}
		description := t.Description
		if t.Details.Counterparty != nil && t.Details.Counterparty.Name != nil && *t.Details.Counterparty.Name != "" {
			description = *t.Details.Counterparty.Name
		}

		transactions = append(transactions, domain.ProviderTransaction{
			ExternalID:  t.ID,
			Amount:      amount,
			Description: description,
			Date:        date,
			Categories:  categories,
		})
	}
	return transactions, nil
}

// get is a helper function to make authenticated HTTP requests to the Teller API.
func (c *Client) get(ctx context.Context, accessToken, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.SetBasicAuth(accessToken, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("teller API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}
