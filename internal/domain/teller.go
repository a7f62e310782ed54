/**
 * @description
 * Wire models for the Teller API endpoints consumed by the sync-service:
 * account listing, per-account balances, and ranged transaction listing.
 * Teller responds with string-encoded decimal amounts; the client parses them
 * before normalization.
 */

package domain

// TellerInstitution is the institution block nested in a Teller account.
type TellerInstitution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TellerAccount is one account record returned by GET /accounts.
type TellerAccount struct {
	ID           string            `json:"id"`
	EnrollmentID string            `json:"enrollment_id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Subtype      string            `json:"subtype"`
	Currency     string            `json:"currency"`
	LastFour     string            `json:"last_four"`
	Institution  TellerInstitution `json:"institution"`
	Status       string            `json:"status"`
}

// TellerBalance is the response from GET /accounts/{id}/balances.
// Amounts are string-encoded decimals.
type TellerBalance struct {
	AccountID string  `json:"account_id"`
	Available *string `json:"available"`
	Ledger    *string `json:"ledger"`
}

// TellerTransaction is one transaction record from
// GET /accounts/{id}/transactions.
type TellerTransaction struct {
	ID          string                   `json:"id"`
	AccountID   string                   `json:"account_id"`
	Amount      string                   `json:"amount"` // signed decimal string
	Date        string                   `json:"date"`   // YYYY-MM-DD
	Description string                   `json:"description"`
	Status      string                   `json:"status"`
	Details     TellerTransactionDetails `json:"details"`
}

// TellerTransactionDetails carries Teller's enrichment block.
type TellerTransactionDetails struct {
	Category     *string             `json:"category"`
	Counterparty *TellerCounterparty `json:"counterparty"`
}

// TellerCounterparty names the opposite party of a transaction.
type TellerCounterparty struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}
