/**
 * @description
 * Account reconciliation: maps one raw provider account record onto a
 * persisted Account row. Lookup prefers the provider-scoped external account
 * identifier; when that misses (providers without a stable id at this layer),
 * a fallback match on institution plus masked account number is attempted.
 * Matches update mutable fields only (balance, credit limit); misses create a
 * fully populated active row.
 *
 * @dependencies
 * - context, errors, strings: Standard Go libraries.
 * - internal/domain, internal/store: Models and data access.
 */

package app

import (
	"context"
	"errors"
	"strings"

	"github.com/monetra/sync-service/internal/domain"
	"github.com/monetra/sync-service/internal/store"
)

// reconcileAccount returns the persisted account for a raw provider record and
// whether a new row was created.
func (s *Service) reconcileAccount(ctx context.Context, cred domain.ProviderCredential, raw domain.ProviderAccount) (*domain.Account, bool, error) {
	existing, err := s.repo.FindAccountByExternalID(ctx, cred.UserID, cred.Provider, raw.ExternalID)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return nil, false, err
	}

	if existing == nil && raw.Mask != "" {
		existing, err = s.repo.FindAccountByMask(ctx, cred.UserID, raw.Institution, raw.Mask)
		if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
			return nil, false, err
		}
	}

	if existing != nil {
		if err := s.repo.UpdateAccountBalances(ctx, existing.ID, raw.Balance, raw.CreditLimit); err != nil {
			return nil, false, err
		}
		existing.Balance = raw.Balance
		if raw.CreditLimit != nil {
			existing.CreditLimit = raw.CreditLimit
		}
		return existing, false, nil
	}

	account := &domain.Account{
		UserID:      cred.UserID,
		Name:        raw.Name,
		Type:        MapAccountType(raw.RawType, raw.RawSubtype),
		Balance:     raw.Balance,
		Currency:    raw.Currency,
		Institution: raw.Institution,
		Mask:        raw.Mask,
		CreditLimit: raw.CreditLimit,
		IsActive:    true,
	}
	externalID := raw.ExternalID
	switch cred.Provider {
	case domain.ProviderPlaid:
		account.PlaidAccountID = &externalID
	case domain.ProviderTeller:
		account.TellerAccountID = &externalID
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// MapAccountType maps a provider's raw type/subtype pair onto the internal
// account-type enum. Unrecognized combinations map to "other"; the mapping
// never fails.
func MapAccountType(rawType, rawSubtype string) domain.AccountType {
	t := strings.ToLower(strings.TrimSpace(rawType))
	st := strings.ToLower(strings.TrimSpace(rawSubtype))

	switch t {
	case "depository":
		switch st {
		case "checking":
			return domain.AccountTypeChecking
		case "savings", "money market", "money_market", "cd":
			return domain.AccountTypeSavings
		default:
			return domain.AccountTypeOther
		}
	case "credit":
		return domain.AccountTypeCreditCard
	case "investment", "brokerage":
		return domain.AccountTypeInvestment
	case "loan", "mortgage":
		return domain.AccountTypeLoan
	case "checking":
		return domain.AccountTypeChecking
	case "savings":
		return domain.AccountTypeSavings
	default:
		return domain.AccountTypeOther
	}
}
