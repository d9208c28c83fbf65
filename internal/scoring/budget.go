package scoring

import "regexp"

// budgetPatterns は予算抽出の正規表現リスト。優先度順に試行し、
// 最初にマッチしたパターンの最初のマッチを採用して打ち切る。
// 元テキスト（小文字化していない）に対して適用する。
var budgetPatterns = []*regexp.Regexp{
	// $500 - $1,000 のような範囲表記
	regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?\s*-\s*\$\d+(?:,\d{3})*(?:\.\d+)?`),
	// Budget: $500
	regexp.MustCompile(`(?i)Budget:\s*\$\d+(?:,\d{3})*(?:\.\d+)?`),
	// $500 USD
	regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?\s*USD`),
	// $50/hr, $50 per hour
	regexp.MustCompile(`(?i)\$\d+(?:,\d{3})*(?:\.\d+)?\s*(?:/\s*(?:hr|hour)|per\s+hour)`),
	// pay $500
	regexp.MustCompile(`(?i)pay\s+\$\d+(?:,\d{3})*(?:\.\d+)?`),
	// budget of $500
	regexp.MustCompile(`(?i)budget\s+of\s+\$\d+(?:,\d{3})*(?:\.\d+)?`),
}

// ExtractBudget はテキストから予算表記を抽出する。
// パターンを優先度順に試し、最初にマッチした文字列をそのまま返す。
// マッチしない場合は空文字列を返す。
func ExtractBudget(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range budgetPatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
