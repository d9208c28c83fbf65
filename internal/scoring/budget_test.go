package scoring

import "testing"

func TestExtractBudget_FirstPatternWins(t *testing.T) {
	// "Budget: $500" パターンが最初にマッチし、後続パターンは試されない
	got := ExtractBudget("Budget: $500, need it fixed today")
	if got != "Budget: $500" {
		t.Errorf("budget = %q, want %q", got, "Budget: $500")
	}
}

func TestExtractBudget_RangeHasHighestPriority(t *testing.T) {
	// 範囲表記は "Budget:" 表記より優先される
	got := ExtractBudget("Budget: $500 - $1,000 for this work")
	if got != "$500 - $1,000" {
		t.Errorf("budget = %q, want %q", got, "$500 - $1,000")
	}
}

func TestExtractBudget_Patterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"範囲表記", "looking at $200-$400 total", "$200-$400"},
		{"Budget表記", "Budget: $1,500 max", "Budget: $1,500"},
		{"USD表記", "can offer $300 USD for this", "$300 USD"},
		{"時給表記", "paying $50/hr for a senior dev", "$50/hr"},
		{"pay表記", "will pay $250 to whoever fixes it", "pay $250"},
		{"budget of表記", "we have a budget of $800", "budget of $800"},
		{"マッチなし", "no money mentioned here", ""},
		{"空入力", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBudget(tt.input); got != tt.want {
				t.Errorf("ExtractBudget(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractBudget_CaseInsensitiveBudgetKeyword(t *testing.T) {
	got := ExtractBudget("budget: $500")
	if got != "budget: $500" {
		t.Errorf("budget = %q, want %q", got, "budget: $500")
	}
}

func TestExtractBudget_Deterministic(t *testing.T) {
	input := "Budget: $500, or maybe pay $600, range $100 - $900"
	first := ExtractBudget(input)
	for i := 0; i < 5; i++ {
		if got := ExtractBudget(input); got != first {
			t.Fatalf("extraction is not deterministic: first=%q, got=%q", first, got)
		}
	}
}
