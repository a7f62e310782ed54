/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access operations required by the sync-service. Defining an interface keeps
 * the sync and categorization logic decoupled from PostgreSQL and lets tests
 * substitute in-memory fakes.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For surrogate keys.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	// Resolve the internal UUID from an auth provider subject (e.g., "user_abc123").
	FindUserIDByAuthSubject(ctx context.Context, subject string) (uuid.UUID, error)

	// Provider credential methods
	ListProviderCredentialsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.ProviderCredential, error)
	// UpsertProviderCredential creates a credential or, on conflict with
	// (provider, item_id), rotates the stored access token.
	UpsertProviderCredential(ctx context.Context, cred *domain.ProviderCredential) error

	// Account methods
	FindAccountByExternalID(ctx context.Context, userID uuid.UUID, provider domain.Provider, externalID string) (*domain.Account, error)
	FindAccountByMask(ctx context.Context, userID uuid.UUID, institution, mask string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
	UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, balance float64, creditLimit *float64) error

	// Transaction methods
	TransactionExists(ctx context.Context, userID, accountID uuid.UUID, provider domain.Provider, externalID string) (bool, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransactionsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Transaction, error)
	// UpdateTransactionCategory writes the denormalized category label, the
	// category relation (resolved by name for the same user), tags, and the
	// confidence recorded for the suggestion, in a single statement.
	UpdateTransactionCategory(ctx context.Context, userID, transactionID uuid.UUID, category string, tags []string, confidence float64) error

	// Category methods
	ListCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error)
	SeedDefaultCategories(ctx context.Context, userID uuid.UUID) error
}
