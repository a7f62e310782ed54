/**
 * @description
 * The bulk categorization service. Given a set of transaction ids for a user
 * it selects only those currently uncategorized or categorized as "Other",
 * runs the categorization engine per transaction, and persists results
 * concurrently. Persistence failures are isolated per record: successes
 * commit, failures are reported in the per-record results, and the aggregate
 * message reflects partial success. The flow is decoupled from the sync path
 * so categorization can be re-run independently.
 *
 * @dependencies
 * - context, fmt, log, sync: Standard Go libraries.
 * - github.com/google/uuid: Transaction identifiers.
 * - internal/cache, internal/domain: Read cache and models.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/cache"
	"github.com/monetra/sync-service/internal/domain"
	"github.com/monetra/sync-service/pkg/rabbitmq"
)

// needsCategorization reports whether a transaction is a bulk-categorization
// target: no category yet, the import-time placeholder, or the heuristic
// catch-all.
func needsCategorization(tx domain.Transaction) bool {
	return tx.Category == "" || tx.Category == domain.UncategorizedLabel || tx.Category == FallbackCategory
}

// BulkCategorize categorizes the selected transactions and persists the
// results. Only the initial read fails the whole call; everything after is
// per-record.
func (s *Service) BulkCategorize(ctx context.Context, userID uuid.UUID, transactionIDs []uuid.UUID) (*domain.BulkCategorizationResult, error) {
	transactions, err := s.repo.FindTransactionsByIDs(ctx, userID, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	var targets []domain.Transaction
	for _, tx := range transactions {
		if needsCategorization(tx) {
			targets = append(targets, tx)
		}
	}
	if len(targets) == 0 {
		return &domain.BulkCategorizationResult{
			Message: "No uncategorized transactions to process.",
			Results: []domain.BulkCategorizationItem{},
		}, nil
	}

	// Categorization calls run sequentially (the engine already bounds its
	// own latency); persistence is fired concurrently and awaited together
	// since category values are independent across transactions.
	suggestions := make([]domain.CategorySuggestion, len(targets))
	for i, tx := range targets {
		suggestions[i] = s.categorizer.Categorize(ctx, CategorizationInput{
			Description:     tx.Description,
			Amount:          tx.Amount,
			CurrentCategory: tx.Category,
		})
	}

	results := make([]domain.BulkCategorizationItem, len(targets))
	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := targets[i]
			suggestion := suggestions[i]
			item := domain.BulkCategorizationItem{
				TransactionID:     tx.ID,
				SuggestedCategory: suggestion.Category,
			}
			if err := s.repo.UpdateTransactionCategory(ctx, userID, tx.ID, suggestion.Category, suggestion.Tags, suggestion.Confidence); err != nil {
				item.Error = err.Error()
			} else {
				item.Ok = true
			}
			results[i] = item
		}(i)
	}
	wg.Wait()

	succeeded := 0
	var categorizedIDs []uuid.UUID
	for _, item := range results {
		if item.Ok {
			succeeded++
			categorizedIDs = append(categorizedIDs, item.TransactionID)
		}
	}

	if succeeded > 0 {
		s.readCache.Invalidate(cache.Key("transactions", userID.String()))
		s.publishTransactionsCategorized(ctx, userID, categorizedIDs)
	}

	message := fmt.Sprintf("Categorized %d transaction(s).", succeeded)
	if failed := len(results) - succeeded; failed > 0 {
		message = fmt.Sprintf("Categorized %d transaction(s); %d failed to persist.", succeeded, failed)
	}

	return &domain.BulkCategorizationResult{Message: message, Results: results}, nil
}

func (s *Service) publishTransactionsCategorized(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) {
	if s.eventProducer == nil {
		return
	}
	event := domain.TransactionsCategorizedEvent{
		EventType:      domain.EventTypeTransactionsCategorized,
		UserID:         userID,
		TransactionIDs: ids,
		CategorizedAt:  s.now().UTC(),
	}
	if err := s.eventProducer.Publish(ctx, rabbitmq.SyncEventsExchange, domain.EventTypeTransactionsCategorized, event); err != nil {
		log.Printf("level=warn component=categorizer msg=\"categorized event publish failed\" user_id=%s err=%v", userID, err)
	}
}
