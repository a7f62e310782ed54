package app

import (
	"context"
	"errors"
	"testing"
)

func TestCategorize_KeywordHeuristic(t *testing.T) {
	engine := NewCategorizationEngine(&fakeCompleter{})

	testCases := []struct {
		description string
		amount      float64
		expected    string
	}{
		{"Starbucks Coffee", 6.0, "Food & Dining"},
		{"WHOLE FOODS MARKET #123", 52.10, "Food & Dining"},
		{"Uber Trip 8823", 18.40, "Transportation"},
		{"Shell Oil 5512", 41.00, "Transportation"},
		{"AMAZON.COM*ORDER", 29.99, "Shopping"},
		{"Netflix.com", 15.49, "Entertainment"},
		{"Comcast Cable", 89.00, "Bills & Utilities"},
		{"CVS Pharmacy", 12.80, "Healthcare"},
		{"Delta Air Lines", 420.00, "Travel"},
		{"ACME Corp Payroll", 2400.00, "Income"},
		{"Random unrecognized merchant", 12.0, "Other"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := engine.Categorize(context.Background(), CategorizationInput{
				Description: tc.description,
				Amount:      tc.amount,
			})
			if got.Category != tc.expected {
				t.Errorf("category = %q, want %q", got.Category, tc.expected)
			}
			if got.Confidence != FallbackConfidence {
				t.Errorf("confidence = %f, want %f", got.Confidence, FallbackConfidence)
			}
			if len(got.Tags) != 1 || got.Tags[0] != FallbackTag {
				t.Errorf("tags = %v, want [%s]", got.Tags, FallbackTag)
			}
		})
	}
}

func TestCategorize_IsDeterministic(t *testing.T) {
	engine := NewCategorizationEngine(&fakeCompleter{})
	input := CategorizationInput{Description: "Starbucks Coffee", Amount: 6.0}

	first := engine.Categorize(context.Background(), input)
	for i := 0; i < 5; i++ {
		again := engine.Categorize(context.Background(), input)
		if again.Category != first.Category || again.Confidence != first.Confidence {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestCategorize_UnconfiguredAIMakesNoCalls(t *testing.T) {
	completer := &fakeCompleter{configured: false}
	engine := NewCategorizationEngine(completer)

	got := engine.Categorize(context.Background(), CategorizationInput{Description: "Starbucks Coffee", Amount: 6.0})
	if completer.calls != 0 {
		t.Fatalf("unconfigured backend must not be called, got %d calls", completer.calls)
	}
	if got.Category != "Food & Dining" {
		t.Fatalf("heuristic must still categorize, got %q", got.Category)
	}
}

func TestCategorize_AISuccess(t *testing.T) {
	completer := &fakeCompleter{configured: true, content: "Travel"}
	engine := NewCategorizationEngine(completer)

	got := engine.Categorize(context.Background(), CategorizationInput{Description: "Delta flight", Amount: 300})
	if got.Category != "Travel" {
		t.Fatalf("category = %q, want Travel", got.Category)
	}
	if got.Confidence != AIConfidence {
		t.Fatalf("confidence = %f, want %f", got.Confidence, AIConfidence)
	}
	for _, tag := range got.Tags {
		if tag == FallbackTag {
			t.Fatal("ai results must not carry the fallback tag")
		}
	}
	if completer.calls != 1 {
		t.Fatalf("expected one backend call, got %d", completer.calls)
	}
}

func TestCategorize_AIErrorFallsBackToHeuristic(t *testing.T) {
	completer := &fakeCompleter{configured: true, err: errors.New("upstream timeout")}
	engine := NewCategorizationEngine(completer)

	got := engine.Categorize(context.Background(), CategorizationInput{Description: "Starbucks Coffee", Amount: 6.0})
	if got.Category != "Food & Dining" {
		t.Fatalf("category = %q, want Food & Dining", got.Category)
	}
	if got.Confidence != FallbackConfidence {
		t.Fatalf("confidence = %f, want %f", got.Confidence, FallbackConfidence)
	}
	if len(got.Tags) != 1 || got.Tags[0] != FallbackTag {
		t.Fatalf("tags = %v, want [%s]", got.Tags, FallbackTag)
	}
}

func TestCategorize_AIUnknownLabelFallsBackToHeuristic(t *testing.T) {
	completer := &fakeCompleter{configured: true, content: "Cryptocurrency"}
	engine := NewCategorizationEngine(completer)

	got := engine.Categorize(context.Background(), CategorizationInput{Description: "Uber Trip", Amount: 18})
	if got.Category != "Transportation" {
		t.Fatalf("category = %q, want Transportation", got.Category)
	}
	if got.Confidence != FallbackConfidence {
		t.Fatalf("confidence = %f, want %f", got.Confidence, FallbackConfidence)
	}
}

func TestMatchAllowedCategory(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected string
		ok       bool
	}{
		{"exact", "Travel", "Travel", true},
		{"case insensitive", "travel", "Travel", true},
		{"quoted", `"Food & Dining"`, "Food & Dining", true},
		{"trailing period", "Shopping.", "Shopping", true},
		{"surrounding whitespace", "  Income  ", "Income", true},
		{"embedded in sentence", "The category is Entertainment for this one", "Entertainment", true},
		{"exact other", "Other", "Other", true},
		{"other only matches exactly", "some other thing entirely", "", false},
		{"unknown", "Cryptocurrency", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := matchAllowedCategory(tc.content)
			if ok != tc.ok || got != tc.expected {
				t.Errorf("matchAllowedCategory(%q) = (%q, %v), want (%q, %v)", tc.content, got, ok, tc.expected, tc.ok)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(CategorizationInput{Description: "Starbucks", Amount: 6.4, CurrentCategory: "Uncategorized"})
	for _, want := range []string{"Starbucks", "6.40", "Uncategorized", "Food & Dining", "category name only"} {
		if !containsAny(prompt, []string{want}) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	withoutCurrent := buildPrompt(CategorizationInput{Description: "Starbucks", Amount: 6.4})
	if containsAny(withoutCurrent, []string{"Current category"}) {
		t.Error("prompt must omit the current-category line when none is set")
	}
}
