/**
 * @description
 * Transaction deduplication and import. Each raw provider transaction is
 * checked for existence by (user, account, provider, external transaction id)
 * and inserted only if absent. That identifier-based check is the sole
 * correctness guarantee against double-import when sync runs repeatedly over
 * overlapping windows; finding an existing row is a silent, expected no-op,
 * not an error path.
 *
 * @dependencies
 * - context, log, math: Standard Go libraries.
 * - internal/domain: Models.
 */

package app

import (
	"context"
	"log"
	"math"

	"github.com/monetra/sync-service/internal/domain"
)

// importTransactions imports the raw transactions missing from the ledger and
// returns the number of newly inserted rows. Per-record failures are logged
// and skipped so one malformed record never aborts its siblings.
func (s *Service) importTransactions(ctx context.Context, provider domain.Provider, account *domain.Account, raws []domain.ProviderTransaction) int {
	inserted := 0
	for _, raw := range raws {
		exists, err := s.repo.TransactionExists(ctx, account.UserID, account.ID, provider, raw.ExternalID)
		if err != nil {
			log.Printf("level=warn component=import msg=\"existence check failed; skipping record\" provider=%s external_id=%s err=%v",
				provider, raw.ExternalID, err)
			continue
		}
		if exists {
			continue
		}

		tx := buildTransaction(provider, account, raw)
		if err := s.repo.CreateTransaction(ctx, tx); err != nil {
			log.Printf("level=warn component=import msg=\"insert failed; skipping record\" provider=%s external_id=%s err=%v",
				provider, raw.ExternalID, err)
			continue
		}
		inserted++
	}
	return inserted
}

// buildTransaction derives the stored row from a raw provider record: the
// amount is stored non-negative with direction encoded in the type, following
// the provider's sign convention (positive in, negative out).
func buildTransaction(provider domain.Provider, account *domain.Account, raw domain.ProviderTransaction) *domain.Transaction {
	txType := domain.TransactionTypeExpense
	if raw.Amount > 0 {
		txType = domain.TransactionTypeIncome
	}

	category := domain.UncategorizedLabel
	if len(raw.Categories) > 0 && raw.Categories[0] != "" {
		category = raw.Categories[0]
	}

	return &domain.Transaction{
		UserID:      account.UserID,
		AccountID:   account.ID,
		Amount:      math.Abs(raw.Amount),
		Description: raw.Description,
		Date:        raw.Date,
		Type:        txType,
		Category:    category,
		Recurring:   false,
		Tags:        []string{},
		Notes:       nil,
		Provider:    provider,
		ExternalID:  raw.ExternalID,
	}
}
