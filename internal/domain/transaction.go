/**
 * @description
 * Transaction and Category domain models plus the result shapes returned by the
 * sync and categorization flows.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType encodes the direction of a transaction. The stored amount is
// always non-negative; sign lives here.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// UncategorizedLabel is the category assigned at import time when the provider
// supplies no category of its own.
const UncategorizedLabel = "Uncategorized"

// Transaction is one ledger record belonging to a user and exactly one account.
// The pair (user, account, provider, external id) is the sole dedup key: the
// importer never writes a second row for it, no matter how often sync runs.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Recurring   bool            `json:"recurring"`
	Tags        []string        `json:"tags"`
	Notes       *string         `json:"notes,omitempty"`
	Confidence  *float64        `json:"confidence,omitempty"`
	Provider    Provider        `json:"provider"`
	ExternalID  string          `json:"external_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category is a per-user spending category. Rows are seeded once per user and
// referenced, not mutated, by the categorization path.
type Category struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Icon   string    `json:"icon"`
}

// CategorySuggestion is the output of the categorization engine.
type CategorySuggestion struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags"`
}

// SyncResult aggregates counts across one full sync run for a user.
type SyncResult struct {
	AccountsSynced     int `json:"accounts_synced"`
	TransactionsSynced int `json:"transactions_synced"`
}

// LinkResult is returned from the initial-link flow so the caller can show
// immediate results without a second round trip.
type LinkResult struct {
	Accounts           []Account `json:"accounts"`
	TransactionsSynced int       `json:"transactions_synced"`
}

// CredentialSyncResult captures the per-credential outcome inside a sync run.
// Failures are recorded here rather than aborting sibling credentials.
type CredentialSyncResult struct {
	Provider           Provider `json:"provider"`
	ItemID             string   `json:"item_id"`
	Ok                 bool     `json:"ok"`
	Error              string   `json:"error,omitempty"`
	AccountsSynced     int      `json:"accounts_synced"`
	TransactionsSynced int      `json:"transactions_synced"`
}

// BulkCategorizationItem is the per-transaction outcome of a bulk
// categorization request.
type BulkCategorizationItem struct {
	TransactionID     uuid.UUID `json:"transaction_id"`
	SuggestedCategory string    `json:"suggested_category"`
	Ok                bool      `json:"ok"`
	Error             string    `json:"error,omitempty"`
}

// BulkCategorizationResult is the aggregate response of the bulk
// categorization service.
type BulkCategorizationResult struct {
	Message string                   `json:"message"`
	Results []BulkCategorizationItem `json:"results"`
}
