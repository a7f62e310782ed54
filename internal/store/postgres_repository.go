/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains the SQL for the tables this service owns or touches:
 * provider_credentials, accounts, transactions, and categories.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/monetra/sync-service/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCredentialNotFound  = errors.New("provider credential not found")
)

// defaultCategories is the per-user category set seeded on first use.
var defaultCategories = []domain.Category{
	{Name: "Food & Dining", Color: "#F59E0B", Icon: "utensils"},
	{Name: "Transportation", Color: "#3B82F6", Icon: "car"},
	{Name: "Shopping", Color: "#EC4899", Icon: "shopping-bag"},
	{Name: "Entertainment", Color: "#8B5CF6", Icon: "film"},
	{Name: "Bills & Utilities", Color: "#EF4444", Icon: "file-text"},
	{Name: "Healthcare", Color: "#10B981", Icon: "heart"},
	{Name: "Travel", Color: "#06B6D4", Icon: "plane"},
	{Name: "Income", Color: "#22C55E", Icon: "trending-up"},
	{Name: "Other", Color: "#6B7280", Icon: "tag"},
}

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUserIDByAuthSubject resolves the internal UUID from an auth provider
// subject id. The users table is managed by the auth service during onboarding.
func (r *PostgresRepository) FindUserIDByAuthSubject(ctx context.Context, subject string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_subject = $1", subject).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

// ListProviderCredentialsByUserID returns every stored provider link for a user.
func (r *PostgresRepository) ListProviderCredentialsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.ProviderCredential, error) {
	query := `
		SELECT id, user_id, provider, access_token, item_id, institution, created_at, updated_at
		FROM provider_credentials
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []domain.ProviderCredential
	for rows.Next() {
		var c domain.ProviderCredential
		if err := rows.Scan(&c.ID, &c.UserID, &c.Provider, &c.AccessToken, &c.ItemID, &c.Institution, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// UpsertProviderCredential creates a credential or rotates the access token on
// re-link. Uniqueness is enforced on (provider, item_id).
func (r *PostgresRepository) UpsertProviderCredential(ctx context.Context, cred *domain.ProviderCredential) error {
	query := `
		INSERT INTO provider_credentials (id, user_id, provider, access_token, item_id, institution, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (provider, item_id)
		DO UPDATE SET access_token = EXCLUDED.access_token, institution = EXCLUDED.institution, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, query,
		cred.ID, cred.UserID, cred.Provider, cred.AccessToken, cred.ItemID, cred.Institution,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
}

const accountColumns = `id, user_id, name, type, balance, currency, institution, mask, credit_limit, is_active, plaid_account_id, teller_account_id, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.Institution,
		&a.Mask, &a.CreditLimit, &a.IsActive, &a.PlaidAccountID, &a.TellerAccountID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAccountByExternalID looks up an account by its provider-scoped external
// identifier, the natural key for reconciliation.
func (r *PostgresRepository) FindAccountByExternalID(ctx context.Context, userID uuid.UUID, provider domain.Provider, externalID string) (*domain.Account, error) {
	var query string
	switch provider {
	case domain.ProviderPlaid:
		query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND plaid_account_id = $2`
	case domain.ProviderTeller:
		query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND teller_account_id = $2`
	default:
		return nil, ErrAccountNotFound
	}
	return scanAccount(r.db.QueryRow(ctx, query, userID, externalID))
}

// FindAccountByMask is the fallback match for providers lacking a stable
// external identifier at this layer: institution name plus masked number.
func (r *PostgresRepository) FindAccountByMask(ctx context.Context, userID uuid.UUID, institution, mask string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND institution = $2 AND mask = $3`
	return scanAccount(r.db.QueryRow(ctx, query, userID, institution, mask))
}

// CreateAccount inserts a fully populated account row.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, user_id, name, type, balance, currency, institution, mask, credit_limit, is_active, plaid_account_id, teller_account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		account.ID, account.UserID, account.Name, account.Type, account.Balance,
		account.Currency, account.Institution, account.Mask, account.CreditLimit,
		account.IsActive, account.PlaidAccountID, account.TellerAccountID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
}

// UpdateAccountBalances refreshes the mutable fields of a reconciled account,
// leaving identity fields untouched.
func (r *PostgresRepository) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, balance float64, creditLimit *float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET balance = $2, credit_limit = COALESCE($3, credit_limit), updated_at = NOW() WHERE id = $1`,
		accountID, balance, creditLimit,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// TransactionExists reports whether a row already exists for the dedup key
// (user, account, provider, external id).
func (r *PostgresRepository) TransactionExists(ctx context.Context, userID, accountID uuid.UUID, provider domain.Provider, externalID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND account_id = $2 AND provider = $3 AND external_id = $4
		)
	`
	err := r.db.QueryRow(ctx, query, userID, accountID, provider, externalID).Scan(&exists)
	return exists, err
}

// CreateTransaction inserts a new ledger record.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Tags == nil {
		tx.Tags = []string{}
	}
	query := `
		INSERT INTO transactions (id, user_id, account_id, amount, description, date, type, category, category_id, recurring, tags, notes, confidence, provider, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		tx.ID, tx.UserID, tx.AccountID, tx.Amount, tx.Description, tx.Date, tx.Type,
		tx.Category, tx.CategoryID, tx.Recurring, tx.Tags, tx.Notes, tx.Confidence,
		tx.Provider, tx.ExternalID,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

// FindTransactionsByIDs returns the user's transactions matching the given ids.
// Ids belonging to other users are silently excluded.
func (r *PostgresRepository) FindTransactionsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, user_id, account_id, amount, description, date, type, category, category_id, recurring, tags, notes, confidence, provider, external_id, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND id = ANY($2)
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Description, &t.Date, &t.Type,
			&t.Category, &t.CategoryID, &t.Recurring, &t.Tags, &t.Notes, &t.Confidence,
			&t.Provider, &t.ExternalID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UpdateTransactionCategory writes both category representations at once: the
// denormalized label and the relation resolved by name for the same user.
func (r *PostgresRepository) UpdateTransactionCategory(ctx context.Context, userID, transactionID uuid.UUID, category string, tags []string, confidence float64) error {
	if tags == nil {
		tags = []string{}
	}
	query := `
		UPDATE transactions t
		SET category = $3,
		    category_id = (SELECT c.id FROM categories c WHERE c.user_id = t.user_id AND lower(c.name) = lower($3)),
		    tags = $4,
		    confidence = $5,
		    updated_at = NOW()
		WHERE t.id = $2 AND t.user_id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, transactionID, category, tags, confidence)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListCategoriesByUserID returns the user's category set.
func (r *PostgresRepository) ListCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	query := `SELECT id, user_id, name, color, icon FROM categories WHERE user_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SeedDefaultCategories inserts the default category set for a user.
// Existing rows are left alone (unique on (user_id, name)).
func (r *PostgresRepository) SeedDefaultCategories(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name) DO NOTHING
	`
	for _, c := range defaultCategories {
		if _, err := r.db.Exec(ctx, query, uuid.New(), userID, c.Name, c.Color, c.Icon); err != nil {
			return err
		}
	}
	return nil
}
