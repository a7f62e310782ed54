/**
 * @description
 * This package provides a client for the Plaid API. It encapsulates the logic
 * for making authenticated HTTP requests to the Plaid endpoints the
 * sync-service consumes: public token exchange, account listing with balances,
 * and ranged transaction listing.
 *
 * Key features:
 * - Manages the API base URL, client id, and secret (Plaid authenticates via
 *   body credentials rather than headers).
 * - Normalizes Plaid wire records into provider-agnostic domain shapes for the
 *   reconciler and importer.
 * - Pages through /transactions/get until the full window is collected.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, log, net/http, time: Standard Go libraries.
 * - internal/domain: Plaid wire models and normalized provider records.
 */

package plaidclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/monetra/sync-service/internal/domain"
)

const transactionsPageSize = 500

// Client is a client for the Plaid API.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
}

// NewClient creates a new Plaid API client.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider identifies this client to the sync orchestrator.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderPlaid
}

// ExchangePublicToken exchanges a short-lived public token for a long-lived
// access token plus item identifier.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.PlaidExchangeResponse, error) {
	req := domain.PlaidExchangeRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}
	var resp domain.PlaidExchangeResponse
	if err := c.post(ctx, "/item/public_token/exchange", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccounts fetches the raw account set (with balances) for an item.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*domain.PlaidAccountsResponse, error) {
	req := domain.PlaidAccountsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}
	var resp domain.PlaidAccountsResponse
	if err := c.post(ctx, "/accounts/get", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAccounts returns the item's accounts normalized for reconciliation.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]domain.ProviderAccount, error) {
	resp, err := c.GetAccounts(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	institution := ""
	if resp.Item.InstitutionName != nil {
		institution = *resp.Item.InstitutionName
	}

	accounts := make([]domain.ProviderAccount, 0, len(resp.Accounts))
	for _, raw := range resp.Accounts {
		accounts = append(accounts, normalizeAccount(raw, institution))
	}
	return accounts, nil
}

// ListTransactions returns the account's transactions inside [start, end],
// normalized and fully paged.
func (c *Client) ListTransactions(ctx context.Context, accessToken, externalAccountID string, start, end time.Time) ([]domain.ProviderTransaction, error) {
	var transactions []domain.ProviderTransaction
	offset := 0

	for {
		req := domain.PlaidTransactionsRequest{
			ClientID:    c.clientID,
			Secret:      c.secret,
			AccessToken: accessToken,
			StartDate:   start.Format("2006-01-02"),
			EndDate:     end.Format("2006-01-02"),
			Options: &domain.PlaidTransactionOptions{
				AccountIDs: []string{externalAccountID},
				Count:      transactionsPageSize,
				Offset:     offset,
			},
		}
		var resp domain.PlaidTransactionsResponse
		if err := c.post(ctx, "/transactions/get", req, &resp); err != nil {
			return nil, err
		}

		for _, raw := range resp.Transactions {
			date, err := time.Parse("2006-01-02", raw.Date)
			if err != nil {
				log.Printf("level=warn component=plaidclient msg=\"skipping transaction with unparseable date\" transaction_id=%s date=%q", raw.TransactionID, raw.Date)
				continue
			}
			description := raw.Name
			if raw.MerchantName != nil && *raw.MerchantName != "" {
				description = *raw.MerchantName
			}
			transactions = append(transactions, domain.ProviderTransaction{
				ExternalID:  raw.TransactionID,
				Amount:      raw.Amount,
				Description: description,
				Date:        date,
				Categories:  raw.Category,
			})
		}

		offset += len(resp.Transactions)
		if offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}
	return transactions, nil
}

func normalizeAccount(raw domain.PlaidAccount, institution string) domain.ProviderAccount {
	account := domain.ProviderAccount{
		ExternalID:  raw.AccountID,
		Name:        raw.Name,
		RawType:     raw.Type,
		Institution: institution,
		Currency:    "USD",
		CreditLimit: raw.Balances.Limit,
	}
	if raw.OfficialName != nil && *raw.OfficialName != "" {
		account.Name = *raw.OfficialName
	}
	if raw.Subtype != nil {
		account.RawSubtype = *raw.Subtype
	}
	if raw.Mask != nil {
		account.Mask = *raw.Mask
	}
	if raw.Balances.Current != nil {
		account.Balance = *raw.Balances.Current
	}
	if raw.Balances.IsoCurrency != nil && *raw.Balances.IsoCurrency != "" {
		account.Currency = *raw.Balances.IsoCurrency
	}
	return account
}

// post is a helper function to make HTTP requests to the Plaid API.
func (c *Client) post(ctx context.Context, path string, body, target interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var plaidErr domain.PlaidErrorResponse
		if json.Unmarshal(respBody, &plaidErr) == nil && plaidErr.ErrorCode != "" {
			return fmt.Errorf("plaid API error: status %d, code %s: %s", resp.StatusCode, plaidErr.ErrorCode, plaidErr.ErrorMessage)
		}
		return fmt.Errorf("plaid API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}
