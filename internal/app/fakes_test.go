package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/cache"
	"github.com/monetra/sync-service/internal/domain"
	"github.com/monetra/sync-service/internal/store"
)

// fakeRepository is an in-memory store.Repository for exercising the sync and
// categorization flows without a database.
type fakeRepository struct {
	mu sync.Mutex

	credentials  []domain.ProviderCredential
	accounts     []*domain.Account
	transactions []*domain.Transaction
	categories   []domain.Category

	listCredentialsErr   error
	createTransactionErr error
	updateCategoryErrFor map[uuid.UUID]error

	createAccountCalls int
	updateBalanceCalls int
	seedCalls          int
	listCategoryCalls  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{updateCategoryErrFor: map[uuid.UUID]error{}}
}

func (r *fakeRepository) FindUserIDByAuthSubject(ctx context.Context, subject string) (uuid.UUID, error) {
	return uuid.Nil, store.ErrUserNotFound
}

func (r *fakeRepository) ListProviderCredentialsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.ProviderCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listCredentialsErr != nil {
		return nil, r.listCredentialsErr
	}
	var creds []domain.ProviderCredential
	for _, c := range r.credentials {
		if c.UserID == userID {
			creds = append(creds, c)
		}
	}
	return creds, nil
}

func (r *fakeRepository) UpsertProviderCredential(ctx context.Context, cred *domain.ProviderCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.credentials {
		if r.credentials[i].Provider == cred.Provider && r.credentials[i].ItemID == cred.ItemID {
			r.credentials[i].AccessToken = cred.AccessToken
			cred.ID = r.credentials[i].ID
			return nil
		}
	}
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	r.credentials = append(r.credentials, *cred)
	return nil
}

func (r *fakeRepository) FindAccountByExternalID(ctx context.Context, userID uuid.UUID, provider domain.Provider, externalID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.ExternalID(provider) == externalID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (r *fakeRepository) FindAccountByMask(ctx context.Context, userID uuid.UUID, institution, mask string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.Institution == institution && a.Mask == mask {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (r *fakeRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	copied := *account
	r.accounts = append(r.accounts, &copied)
	r.createAccountCalls++
	return nil
}

func (r *fakeRepository) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, balance float64, creditLimit *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == accountID {
			a.Balance = balance
			if creditLimit != nil {
				a.CreditLimit = creditLimit
			}
			r.updateBalanceCalls++
			return nil
		}
	}
	return store.ErrAccountNotFound
}

func (r *fakeRepository) TransactionExists(ctx context.Context, userID, accountID uuid.UUID, provider domain.Provider, externalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.UserID == userID && t.AccountID == accountID && t.Provider == provider && t.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createTransactionErr != nil {
		return r.createTransactionErr
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	copied := *tx
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *fakeRepository) FindTransactionsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Transaction
	for _, t := range r.transactions {
		if t.UserID == userID && wanted[t.ID] {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateTransactionCategory(ctx context.Context, userID, transactionID uuid.UUID, category string, tags []string, confidence float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.updateCategoryErrFor[transactionID]; ok {
		return err
	}
	for _, t := range r.transactions {
		if t.UserID == userID && t.ID == transactionID {
			t.Category = category
			t.Tags = tags
			t.Confidence = &confidence
			return nil
		}
	}
	return store.ErrTransactionNotFound
}

func (r *fakeRepository) ListCategoriesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCategoryCalls++
	var out []domain.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepository) SeedDefaultCategories(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedCalls++
	for _, name := range AllowedCategories {
		r.categories = append(r.categories, domain.Category{ID: uuid.New(), UserID: userID, Name: name})
	}
	return nil
}

// fakeProviderClient serves canned accounts and transactions.
type fakeProviderClient struct {
	provider        domain.Provider
	accounts        []domain.ProviderAccount
	transactions    map[string][]domain.ProviderTransaction
	accountsErr     error
	transactionsErr map[string]error
}

func (c *fakeProviderClient) Provider() domain.Provider { return c.provider }

func (c *fakeProviderClient) ListAccounts(ctx context.Context, accessToken string) ([]domain.ProviderAccount, error) {
	if c.accountsErr != nil {
		return nil, c.accountsErr
	}
	return c.accounts, nil
}

func (c *fakeProviderClient) ListTransactions(ctx context.Context, accessToken, externalAccountID string, start, end time.Time) ([]domain.ProviderTransaction, error) {
	if err, ok := c.transactionsErr[externalAccountID]; ok {
		return nil, err
	}
	return c.transactions[externalAccountID], nil
}

// fakePlaidLinker returns a fixed exchange result.
type fakePlaidLinker struct {
	resp *domain.PlaidExchangeResponse
	err  error
}

func (l *fakePlaidLinker) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.PlaidExchangeResponse, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.resp, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

func (p *recordingPublisher) Close() {}

// fakeCompleter scripts the AI backend.
type fakeCompleter struct {
	configured bool
	content    string
	err        error
	calls      int
}

func (c *fakeCompleter) IsConfigured() bool { return c.configured }

func (c *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.content, nil
}

func newTestService(repo *fakeRepository, clients []ProviderClient, linker PlaidLinker, completer Completer) (*Service, *recordingPublisher) {
	publisher := &recordingPublisher{}
	svc := NewService(repo, clients, linker, NewCategorizationEngine(completer), publisher, cache.New())
	return svc, publisher
}

func mustCredential(repo *fakeRepository, userID uuid.UUID, provider domain.Provider, itemID string) domain.ProviderCredential {
	cred := domain.ProviderCredential{
		ID:          uuid.New(),
		UserID:      userID,
		Provider:    provider,
		AccessToken: fmt.Sprintf("token-%s", itemID),
		ItemID:      itemID,
	}
	repo.credentials = append(repo.credentials, cred)
	return cred
}

var errProviderDown = errors.New("provider unavailable")
