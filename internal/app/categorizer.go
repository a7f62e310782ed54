/**
 * @description
 * The categorization engine. Given a transaction description and amount it
 * produces a spending category, a confidence score, and a tag set. The engine
 * is an ordered chain of strategies: the AI backend first, then a
 * deterministic keyword heuristic that can never fail, so categorization is
 * total for any input.
 *
 * Failure policy for the AI strategy, evaluated in order:
 *   1. No AI credentials configured: skip the network call entirely.
 *   2. "Model not found" for a configured non-default model: the client retries
 *      once against the default model before giving up.
 *   3. Any other non-success status, timeout, or network error: defer.
 *   4. A response that is empty or not one of the allowed labels: defer.
 *
 * Heuristic results carry the sentinel tag "fallback" and a fixed low
 * confidence so downstream consumers can distinguish AI-derived from
 * heuristic-derived categories.
 *
 * @dependencies
 * - context, fmt, log, strings: Standard Go libraries.
 * - internal/domain: CategorySuggestion and transaction models.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/monetra/sync-service/internal/domain"
)

const (
	// FallbackTag marks heuristic-derived suggestions.
	FallbackTag = "fallback"

	// AIConfidence and FallbackConfidence are the fixed scores attached to
	// suggestions from each tier.
	AIConfidence       = 0.9
	FallbackConfidence = 0.3

	// FallbackCategory is returned when no keyword matches.
	FallbackCategory = "Other"
)

// AllowedCategories is the fixed label set the engine may emit. It mirrors the
// default category rows seeded per user.
var AllowedCategories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Travel",
	"Income",
	"Other",
}

// categoryKeywords is the heuristic table: category paired with lowercase
// keywords. Order matters; the first matching category wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Food & Dining", []string{"coffee", "starbucks", "restaurant", "cafe", "mcdonald", "chipotle", "doordash", "grubhub", "pizza", "grocery", "whole foods", "trader joe", "dunkin", "bakery"}},
	{"Transportation", []string{"uber", "lyft", "gas", "shell", "chevron", "exxon", "parking", "transit", "metro", "toll"}},
	{"Shopping", []string{"amazon", "target", "walmart", "ebay", "etsy", "best buy", "costco", "ikea"}},
	{"Entertainment", []string{"netflix", "spotify", "hulu", "disney", "cinema", "theater", "steam", "playstation", "concert"}},
	{"Bills & Utilities", []string{"electric", "water bill", "internet", "comcast", "verizon", "t-mobile", "utility", "insurance", "rent"}},
	{"Healthcare", []string{"pharmacy", "cvs", "walgreens", "doctor", "dental", "clinic", "hospital", "optometr"}},
	{"Travel", []string{"airline", "airlines", "hotel", "airbnb", "delta", "united", "flight", "marriott", "hilton", "expedia"}},
	{"Income", []string{"payroll", "salary", "direct dep", "paycheck", "dividend", "interest payment"}},
}

// CategorizationInput is one categorization request.
type CategorizationInput struct {
	Description     string
	Amount          float64
	CurrentCategory string // bulk mode only; embedded in the AI prompt
}

// CategorizationStrategy is one tier of the engine. Returning ok=false defers
// to the next strategy in the chain.
type CategorizationStrategy interface {
	Name() string
	Categorize(ctx context.Context, input CategorizationInput) (domain.CategorySuggestion, bool)
}

// Completer is the AI backend contract consumed by the engine.
type Completer interface {
	IsConfigured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// CategorizationEngine runs the strategy chain. The final strategy is the
// keyword heuristic, which always produces a result.
type CategorizationEngine struct {
	strategies []CategorizationStrategy
}

// NewCategorizationEngine builds the standard two-tier engine.
func NewCategorizationEngine(completer Completer) *CategorizationEngine {
	return &CategorizationEngine{
		strategies: []CategorizationStrategy{
			&aiStrategy{completer: completer},
			&keywordStrategy{},
		},
	}
}

// Categorize produces a suggestion for the input. It cannot fail: the keyword
// heuristic terminates the chain with a definitive result.
func (e *CategorizationEngine) Categorize(ctx context.Context, input CategorizationInput) domain.CategorySuggestion {
	for _, strategy := range e.strategies {
		if suggestion, ok := strategy.Categorize(ctx, input); ok {
			return suggestion
		}
	}
	// Unreachable with the standard chain; kept so a misconfigured engine
	// still returns something usable.
	return domain.CategorySuggestion{Category: FallbackCategory, Confidence: FallbackConfidence, Tags: []string{FallbackTag}}
}

// aiStrategy asks the AI backend for a category label.
type aiStrategy struct {
	completer Completer
}

func (s *aiStrategy) Name() string { return "ai" }

func (s *aiStrategy) Categorize(ctx context.Context, input CategorizationInput) (domain.CategorySuggestion, bool) {
	if s.completer == nil || !s.completer.IsConfigured() {
		return domain.CategorySuggestion{}, false
	}

	content, err := s.completer.Complete(ctx, buildPrompt(input))
	if err != nil {
		log.Printf("level=warn component=categorizer msg=\"ai completion failed; deferring to heuristic\" err=%v", err)
		return domain.CategorySuggestion{}, false
	}

	category, ok := matchAllowedCategory(content)
	if !ok {
		log.Printf("level=warn component=categorizer msg=\"ai returned unknown label; deferring to heuristic\" label=%q", content)
		return domain.CategorySuggestion{}, false
	}

	return domain.CategorySuggestion{
		Category:   category,
		Confidence: AIConfidence,
		Tags:       []string{},
	}, true
}

// keywordStrategy is the deterministic terminal tier.
type keywordStrategy struct{}

func (s *keywordStrategy) Name() string { return "keyword" }

func (s *keywordStrategy) Categorize(ctx context.Context, input CategorizationInput) (domain.CategorySuggestion, bool) {
	description := strings.ToLower(input.Description)
	category := FallbackCategory
	for _, row := range categoryKeywords {
		if containsAny(description, row.keywords) {
			category = row.category
			break
		}
	}
	return domain.CategorySuggestion{
		Category:   category,
		Confidence: FallbackConfidence,
		Tags:       []string{FallbackTag},
	}, true
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func buildPrompt(input CategorizationInput) string {
	var b strings.Builder
	b.WriteString("Categorize this financial transaction into exactly one of the following categories: ")
	b.WriteString(strings.Join(AllowedCategories, ", "))
	b.WriteString(".\n")
	fmt.Fprintf(&b, "Description: %s\nAmount: %.2f\n", input.Description, input.Amount)
	if input.CurrentCategory != "" {
		fmt.Fprintf(&b, "Current category: %s\n", input.CurrentCategory)
	}
	b.WriteString("Respond with the category name only.")
	return b.String()
}

// matchAllowedCategory maps the backend's free text onto the allowed label
// set. An exact case-insensitive match wins; otherwise the first allowed label
// contained in the text is accepted.
func matchAllowedCategory(content string) (string, bool) {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(content), `"'.`))
	for _, allowed := range AllowedCategories {
		if strings.EqualFold(trimmed, allowed) {
			return allowed, true
		}
	}
	lower := strings.ToLower(content)
	for _, allowed := range AllowedCategories {
		if allowed == FallbackCategory {
			// "Other" appears in too many sentences to match loosely.
			continue
		}
		if strings.Contains(lower, strings.ToLower(allowed)) {
			return allowed, true
		}
	}
	return "", false
}
