/**
 * @description
 * Normalized provider payloads. The Plaid and Teller clients map their wire
 * formats into these shapes so the reconciler and importer stay provider
 * agnostic.
 *
 * @notes
 * - ProviderTransaction.Amount keeps the provider's sign convention: positive
 *   means money in, negative means money out. The importer derives the stored
 *   type and absolute amount from it.
 */

package domain

import "time"

// ProviderAccount is one raw account record as reported by a provider,
// normalized across providers.
type ProviderAccount struct {
	ExternalID  string
	Name        string
	RawType     string
	RawSubtype  string
	Balance     float64
	Currency    string
	Institution string
	Mask        string
	CreditLimit *float64
}

// ProviderTransaction is one raw transaction record as reported by a provider.
type ProviderTransaction struct {
	ExternalID  string
	Amount      float64 // signed: positive in, negative out
	Description string
	Date        time.Time
	Categories  []string
}
