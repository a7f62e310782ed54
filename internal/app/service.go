/**
 * @description
 * This file contains the core business logic for the sync-service. The
 * `Service` struct orchestrates provider synchronization: it iterates a user's
 * stored provider credentials, pulls accounts and the trailing transaction
 * window from each provider, reconciles accounts, imports transactions without
 * duplicates, and aggregates counts across the batch.
 *
 * Key behaviors:
 * - Per-credential and per-account failures are caught and logged; they never
 *   abort processing of remaining credentials or accounts. A single revoked or
 *   rate-limited item must not block sync for a user's other institutions.
 * - Credentials and accounts are processed sequentially to bound provider API
 *   load per user and keep error isolation simple.
 * - The initial-link flows (Plaid token exchange, Teller connect) run the same
 *   reconciliation and import logic synchronously and return the newly created
 *   accounts so callers can show immediate results.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: User and account identifiers.
 * - internal/cache, internal/domain, internal/store: Read cache, models, data access.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/cache"
	"github.com/monetra/sync-service/internal/domain"
	"github.com/monetra/sync-service/internal/store"
	"github.com/monetra/sync-service/pkg/rabbitmq"
)

// TransactionSyncWindowDays is the trailing window imported on every sync.
const TransactionSyncWindowDays = 90

// ErrUnsupportedProvider is recorded on a credential whose provider has no
// registered client.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ProviderClient is the contract each bank-data provider client satisfies.
type ProviderClient interface {
	Provider() domain.Provider
	ListAccounts(ctx context.Context, accessToken string) ([]domain.ProviderAccount, error)
	ListTransactions(ctx context.Context, accessToken, externalAccountID string, start, end time.Time) ([]domain.ProviderTransaction, error)
}

// PlaidLinker exchanges a short-lived public token for a long-lived access
// token plus item identifier. Satisfied by the Plaid client.
type PlaidLinker interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (*domain.PlaidExchangeResponse, error)
}

// Service provides the core sync and categorization logic.
type Service struct {
	repo          store.Repository
	providers     map[domain.Provider]ProviderClient
	plaidLinker   PlaidLinker
	categorizer   *CategorizationEngine
	eventProducer rabbitmq.Publisher
	readCache     cache.Store
	now           func() time.Time
}

// NewService creates a new sync service instance. Provider clients are keyed
// by the provider they report; the Plaid linker may be nil when Plaid is not
// configured.
func NewService(
	repo store.Repository,
	providerClients []ProviderClient,
	plaidLinker PlaidLinker,
	categorizer *CategorizationEngine,
	producer rabbitmq.Publisher,
	readCache cache.Store,
) *Service {
	providers := make(map[domain.Provider]ProviderClient, len(providerClients))
	for _, client := range providerClients {
		providers[client.Provider()] = client
	}
	return &Service{
		repo:          repo,
		providers:     providers,
		plaidLinker:   plaidLinker,
		categorizer:   categorizer,
		eventProducer: producer,
		readCache:     readCache,
		now:           time.Now,
	}
}

// ResolveInternalUserID converts an auth subject (e.g., "user_abc123") into
// the internal UUID used by our database.
func (s *Service) ResolveInternalUserID(ctx context.Context, subject string) (uuid.UUID, error) {
	return s.repo.FindUserIDByAuthSubject(ctx, subject)
}

// SyncAllForUser synchronizes every stored provider credential for a user and
// returns aggregate counts. A user with no credentials gets a zero-result
// summary, not an error.
func (s *Service) SyncAllForUser(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error) {
	creds, err := s.repo.ListProviderCredentialsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider credentials: %w", err)
	}

	result := &domain.SyncResult{}
	for _, cred := range creds {
		unit, _ := s.syncCredential(ctx, cred)
		if !unit.Ok {
			log.Printf("level=warn component=sync msg=\"credential sync failed; continuing with remaining credentials\" provider=%s item_id=%s err=%q",
				unit.Provider, unit.ItemID, unit.Error)
		}
		result.AccountsSynced += unit.AccountsSynced
		result.TransactionsSynced += unit.TransactionsSynced
	}

	if result.TransactionsSynced > 0 || result.AccountsSynced > 0 {
		s.readCache.Invalidate(
			cache.Key("accounts", userID.String()),
			cache.Key("transactions", userID.String()),
		)
	}
	s.publishSyncCompleted(ctx, userID, result)
	return result, nil
}

// ExchangePlaidToken completes a Plaid link: it exchanges the public token,
// persists (or rotates) the credential, and runs the standard reconciliation
// and 90-day import synchronously so the caller sees results immediately.
func (s *Service) ExchangePlaidToken(ctx context.Context, userID uuid.UUID, publicToken string) (*domain.LinkResult, error) {
	if s.plaidLinker == nil {
		return nil, errors.New("plaid is not configured")
	}

	exchange, err := s.plaidLinker.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}

	cred := &domain.ProviderCredential{
		UserID:      userID,
		Provider:    domain.ProviderPlaid,
		AccessToken: exchange.AccessToken,
		ItemID:      exchange.ItemID,
	}
	if err := s.repo.UpsertProviderCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to persist plaid credential: %w", err)
	}

	return s.linkSync(ctx, *cred)
}

// ConnectTeller completes a Teller link: the Teller Connect flow hands the
// caller an access token and enrollment id directly, so there is no exchange
// step. The credential is persisted and the item synced synchronously.
func (s *Service) ConnectTeller(ctx context.Context, userID uuid.UUID, accessToken, enrollmentID string) (*domain.LinkResult, error) {
	cred := &domain.ProviderCredential{
		UserID:      userID,
		Provider:    domain.ProviderTeller,
		AccessToken: accessToken,
		ItemID:      enrollmentID,
	}
	if err := s.repo.UpsertProviderCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to persist teller credential: %w", err)
	}

	return s.linkSync(ctx, *cred)
}

// linkSync runs the standard credential sync and reshapes the outcome for the
// link-completion response. Unlike the batch path, a provider failure here is
// surfaced to the caller: the user just linked this item and needs to know.
func (s *Service) linkSync(ctx context.Context, cred domain.ProviderCredential) (*domain.LinkResult, error) {
	unit, accounts := s.syncCredential(ctx, cred)
	if !unit.Ok {
		return nil, fmt.Errorf("initial sync failed for %s item %s: %s", cred.Provider, cred.ItemID, unit.Error)
	}

	if unit.AccountsSynced > 0 || unit.TransactionsSynced > 0 {
		s.readCache.Invalidate(
			cache.Key("accounts", cred.UserID.String()),
			cache.Key("transactions", cred.UserID.String()),
		)
	}
	s.publishSyncCompleted(ctx, cred.UserID, &domain.SyncResult{
		AccountsSynced:     unit.AccountsSynced,
		TransactionsSynced: unit.TransactionsSynced,
	})

	return &domain.LinkResult{
		Accounts:           accounts,
		TransactionsSynced: unit.TransactionsSynced,
	}, nil
}

// syncCredential processes one credential: fetch accounts, reconcile each,
// fetch the trailing transaction window per account, and import what is
// missing. Account-level failures are logged and skipped; the remaining
// accounts still sync. The returned slice holds the reconciled accounts in
// provider order.
func (s *Service) syncCredential(ctx context.Context, cred domain.ProviderCredential) (domain.CredentialSyncResult, []domain.Account) {
	unit := domain.CredentialSyncResult{Provider: cred.Provider, ItemID: cred.ItemID}

	client, registered := s.providers[cred.Provider]
	if !registered {
		unit.Error = ErrUnsupportedProvider.Error()
		return unit, nil
	}

	rawAccounts, err := client.ListAccounts(ctx, cred.AccessToken)
	if err != nil {
		unit.Error = err.Error()
		return unit, nil
	}
	unit.Ok = true

	end := s.now()
	start := end.AddDate(0, 0, -TransactionSyncWindowDays)

	var accounts []domain.Account
	for _, raw := range rawAccounts {
		account, _, err := s.reconcileAccount(ctx, cred, raw)
		if err != nil {
			log.Printf("level=warn component=sync msg=\"account reconciliation failed; skipping account\" provider=%s external_id=%s err=%v",
				cred.Provider, raw.ExternalID, err)
			continue
		}
		unit.AccountsSynced++
		accounts = append(accounts, *account)

		rawTxs, err := client.ListTransactions(ctx, cred.AccessToken, raw.ExternalID, start, end)
		if err != nil {
			log.Printf("level=warn component=sync msg=\"transaction fetch failed; skipping account window\" provider=%s external_id=%s err=%v",
				cred.Provider, raw.ExternalID, err)
			continue
		}
		unit.TransactionsSynced += s.importTransactions(ctx, cred.Provider, account, rawTxs)
	}

	return unit, accounts
}

func (s *Service) publishSyncCompleted(ctx context.Context, userID uuid.UUID, result *domain.SyncResult) {
	if s.eventProducer == nil {
		return
	}
	event := domain.SyncCompletedEvent{
		EventType:          domain.EventTypeSyncCompleted,
		UserID:             userID,
		AccountsSynced:     result.AccountsSynced,
		TransactionsSynced: result.TransactionsSynced,
		CompletedAt:        s.now().UTC(),
	}
	if err := s.eventProducer.Publish(ctx, rabbitmq.SyncEventsExchange, domain.EventTypeSyncCompleted, event); err != nil {
		log.Printf("level=warn component=sync msg=\"sync completed event publish failed\" user_id=%s err=%v", userID, err)
	}
}
