/**
 * @description
 * Wire models for the Plaid API endpoints consumed by the sync-service:
 * public token exchange, account listing with balances, and ranged transaction
 * listing. Field names follow Plaid's JSON contract.
 */

package domain

// PlaidExchangeRequest is the body for /item/public_token/exchange.
type PlaidExchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// PlaidExchangeResponse is the response from /item/public_token/exchange.
type PlaidExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// PlaidAccountsRequest is the body for /accounts/get and /accounts/balance/get.
type PlaidAccountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// PlaidBalances carries the balance block nested in a Plaid account.
type PlaidBalances struct {
	Available      *float64 `json:"available"`
	Current        *float64 `json:"current"`
	Limit          *float64 `json:"limit"`
	IsoCurrency    *string  `json:"iso_currency_code"`
	UnofficialCode *string  `json:"unofficial_currency_code"`
}

// PlaidAccount is one account record returned by /accounts/get.
type PlaidAccount struct {
	AccountID    string        `json:"account_id"`
	Name         string        `json:"name"`
	OfficialName *string       `json:"official_name"`
	Mask         *string       `json:"mask"`
	Type         string        `json:"type"`
	Subtype      *string       `json:"subtype"`
	Balances     PlaidBalances `json:"balances"`
}

// PlaidItem is the item block returned alongside accounts.
type PlaidItem struct {
	ItemID          string  `json:"item_id"`
	InstitutionName *string `json:"institution_name"`
}

// PlaidAccountsResponse is the response from /accounts/get.
type PlaidAccountsResponse struct {
	Accounts  []PlaidAccount `json:"accounts"`
	Item      PlaidItem      `json:"item"`
	RequestID string         `json:"request_id"`
}

// PlaidTransactionsRequest is the body for /transactions/get. Dates are ISO
// YYYY-MM-DD bounds; AccountIDs narrows the result to one reconciled account.
type PlaidTransactionsRequest struct {
	ClientID    string                   `json:"client_id"`
	Secret      string                   `json:"secret"`
	AccessToken string                   `json:"access_token"`
	StartDate   string                   `json:"start_date"`
	EndDate     string                   `json:"end_date"`
	Options     *PlaidTransactionOptions `json:"options,omitempty"`
}

// PlaidTransactionOptions holds the optional filters for /transactions/get.
type PlaidTransactionOptions struct {
	AccountIDs []string `json:"account_ids,omitempty"`
	Count      int      `json:"count,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// PlaidTransaction is one transaction record returned by /transactions/get.
type PlaidTransaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Amount        float64  `json:"amount"`
	Date          string   `json:"date"`
	Name          string   `json:"name"`
	MerchantName  *string  `json:"merchant_name"`
	Category      []string `json:"category"`
	Pending       bool     `json:"pending"`
}

// PlaidTransactionsResponse is the response from /transactions/get.
type PlaidTransactionsResponse struct {
	Accounts          []PlaidAccount     `json:"accounts"`
	Transactions      []PlaidTransaction `json:"transactions"`
	TotalTransactions int                `json:"total_transactions"`
	RequestID         string             `json:"request_id"`
}

// PlaidErrorResponse is Plaid's error envelope, returned with non-2xx statuses.
type PlaidErrorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}
