/**
 * @description
 * Event payloads published to RabbitMQ after sync and categorization runs so
 * that downstream consumers (budgeting, notifications) can react without
 * polling the ledger.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event type constants used as routing keys.
const (
	EventTypeSyncCompleted           = "sync.completed"
	EventTypeTransactionsCategorized = "transactions.categorized"
)

// SyncCompletedEvent is published once per sync run with aggregate counts.
type SyncCompletedEvent struct {
	EventType          string    `json:"event_type"`
	UserID             uuid.UUID `json:"user_id"`
	AccountsSynced     int       `json:"accounts_synced"`
	TransactionsSynced int       `json:"transactions_synced"`
	CompletedAt        time.Time `json:"completed_at"`
}

// TransactionsCategorizedEvent is published after a bulk categorization run.
type TransactionsCategorizedEvent struct {
	EventType      string      `json:"event_type"`
	UserID         uuid.UUID   `json:"user_id"`
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	CategorizedAt  time.Time   `json:"categorized_at"`
}
