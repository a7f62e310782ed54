/**
 * @description
 * This file defines the core domain models for the sync-service: linked provider
 * credentials, bank accounts, ledger transactions, and spending categories.
 * These structs represent the entities persisted by the store layer and the
 * data transfer objects exchanged with the API layer.
 *
 * @notes
 * - Provider identity fields (PlaidAccountID, TellerAccountID) are kept as
 *   distinct columns; the pair (user, provider, external id) is the natural key
 *   used for reconciliation, while ID remains the surrogate key.
 * - Transaction.Amount is always stored non-negative; direction is carried by
 *   Transaction.Type, derived at import time from the provider's signed amount.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies a bank-data aggregator.
type Provider string

const (
	ProviderPlaid  Provider = "plaid"
	ProviderTeller Provider = "teller"
)

// AccountType is the internal account classification.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// ProviderCredential represents one user's linked connection ("item" for Plaid,
// "enrollment" for Teller) to a financial institution via a provider.
// Unique per (provider, item_id). Token rotation on re-link updates AccessToken
// in place; the sync path never deletes credentials.
type ProviderCredential struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Provider    Provider  `json:"provider"`
	AccessToken string    `json:"-"`
	ItemID      string    `json:"item_id"`
	Institution string    `json:"institution"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Account is a persisted bank account owned by one user.
type Account struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Name            string      `json:"name"`
	Type            AccountType `json:"type"`
	Balance         float64     `json:"balance"`
	Currency        string      `json:"currency"`
	Institution     string      `json:"institution"`
	Mask            string      `json:"mask"`
	CreditLimit     *float64    `json:"credit_limit,omitempty"`
	IsActive        bool        `json:"is_active"`
	PlaidAccountID  *string     `json:"plaid_account_id,omitempty"`
	TellerAccountID *string     `json:"teller_account_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ExternalID returns the provider-scoped account identifier for the given
// provider, or an empty string if the account is not linked to that provider.
func (a *Account) ExternalID(provider Provider) string {
	switch provider {
	case ProviderPlaid:
		if a.PlaidAccountID != nil {
			return *a.PlaidAccountID
		}
	case ProviderTeller:
		if a.TellerAccountID != nil {
			return *a.TellerAccountID
		}
	}
	return ""
}
