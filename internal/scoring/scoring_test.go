package scoring

import (
	"reflect"
	"testing"

	"github.com/hitoshi/beacon/internal/model"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultConfig())
}

func TestScore_Deterministic(t *testing.T) {
	e := newTestExtractor()

	title := "Urgent help needed with React site"
	content := "Our react app is broken in production, will pay for a fix"

	first := e.Score(title, content, 1.0)
	for i := 0; i < 10; i++ {
		if got := e.Score(title, content, 1.0); got != first {
			t.Fatalf("score is not deterministic: first=%d, got=%d", first, got)
		}
	}
}

func TestScore_WithinBounds(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"空入力", "", ""},
		{"マッチなし", "hello world", "nothing relevant here"},
		{"全キーワード", "urgent emergency asap immediately help stuck broken not working deadline",
			"production down site down will pay budget hire freelancer frustrated desperate please help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Score(tt.title, tt.content, 1.0)
			if got < 0 || got > e.Config().MaxScore {
				t.Errorf("score = %d, want in [0, %d]", got, e.Config().MaxScore)
			}
		})
	}
}

func TestScore_ClampedAtMaxScore(t *testing.T) {
	e := NewExtractor(Config{MaxScore: 100, UrgentMin: 30, MediumMin: 15})

	// 全フレーズの合計は100を超えるためクランプされる
	title := "urgent emergency asap immediately help stuck broken not working deadline"
	content := "production down site down will pay budget hire freelancer frustrated desperate please help"

	if got := e.Score(title, content, 1.0); got != 100 {
		t.Errorf("score = %d, want clamped to 100", got)
	}
}

func TestScore_Monotonic(t *testing.T) {
	e := newTestExtractor()

	// キーワードを1つずつ追加してもスコアは減少しない
	content := ""
	prev := e.Score("", content, 1.0)
	for _, phrase := range []string{"help", "stuck", "broken", "deadline", "urgent", "will pay"} {
		content += " " + phrase
		got := e.Score("", content, 1.0)
		if got < prev {
			t.Errorf("score decreased after adding %q: %d -> %d", phrase, prev, got)
		}
		prev = got
	}
}

func TestScore_SubstringPresenceCountsOnce(t *testing.T) {
	e := newTestExtractor()

	once := e.Score("", "urgent", 1.0)
	many := e.Score("", "urgent urgent urgent urgent", 1.0)

	if once != many {
		t.Errorf("repeated phrase should count once: once=%d, many=%d", once, many)
	}
}

func TestScore_NotWorkingRequiresLiteralSubstring(t *testing.T) {
	e := newTestExtractor()

	// スペースを含む "not working" のみマッチし、"notworking" はマッチしない
	with := e.Score("", "the site is not working", 1.0)
	without := e.Score("", "the site is notworking", 1.0)

	if with != 6 {
		t.Errorf("score(\"not working\") = %d, want 6", with)
	}
	if without != 0 {
		t.Errorf("score(\"notworking\") = %d, want 0", without)
	}
}

func TestScore_KnownExample(t *testing.T) {
	e := newTestExtractor()

	title := "Urgent help needed with React site"
	content := "Our react app is broken in production, will pay for a fix"

	// urgent(10) + help(5) + broken(7) は最低でも含まれる
	got := e.Score(title, content, 1.0)
	if got < 10+5+7 {
		t.Errorf("score = %d, want >= %d", got, 10+5+7)
	}
}

func TestScore_BoostAppliedBeforeClamp(t *testing.T) {
	e := NewExtractor(Config{MaxScore: 100, UrgentMin: 30, MediumMin: 15})

	base := e.Score("", "urgent", 1.0) // 10
	boosted := e.Score("", "urgent", 2.0)

	if boosted != base*2 {
		t.Errorf("boosted score = %d, want %d", boosted, base*2)
	}

	// ブースト後もクランプは効く
	huge := e.Score("", "production down will pay emergency site down", 10.0)
	if huge != 100 {
		t.Errorf("boosted score = %d, want clamped to 100", huge)
	}
}

func TestScore_EmptyInputYieldsZero(t *testing.T) {
	e := newTestExtractor()

	if got := e.Score("", "", 1.0); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestKeywords_TableDeclarationOrder(t *testing.T) {
	e := newTestExtractor()

	// 入力順（broken → help → urgent）ではなくテーブル宣言順で返る
	got := e.Keywords("broken stuff", "need help, this is urgent")
	want := []string{"urgent", "help", "broken"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
}

func TestKeywords_NoDuplicates(t *testing.T) {
	e := newTestExtractor()

	got := e.Keywords("urgent urgent", "urgent again")
	want := []string{"urgent"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
}

func TestKeywords_KnownExample(t *testing.T) {
	e := newTestExtractor()

	title := "Urgent help needed with React site"
	content := "Our react app is broken in production, will pay for a fix"

	got := e.Keywords(title, content)

	for _, want := range []string{"urgent", "help", "broken"} {
		found := false
		for _, kw := range got {
			if kw == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("keywords %v should include %q", got, want)
		}
	}
}

func TestExtractTechStack_VocabularyOrder(t *testing.T) {
	// 入力での出現順に関わらず語彙の宣言順（javascript → react → python）で返る
	got := ExtractTechStack("Python and React", "also some nodejs work")
	want := []string{"javascript", "react", "python"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("tech stack = %v, want %v", got, want)
	}
}

func TestExtractTechStack_SurfaceFormsMapToCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nextjs app", "react"},
		{"django project", "python"},
		{"laravel site", "php"},
		{"shopify store", "ecommerce"},
		{"postgresql tuning", "database"},
	}

	for _, tt := range tests {
		got := ExtractTechStack(tt.input, "")
		if len(got) == 0 {
			t.Errorf("ExtractTechStack(%q) = empty, want to include %q", tt.input, tt.want)
			continue
		}
		found := false
		for _, tag := range got {
			if tag == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("ExtractTechStack(%q) = %v, want to include %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractTechStack_NoDuplicates(t *testing.T) {
	got := ExtractTechStack("react reactjs next.js", "more react")
	want := []string{"react"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("tech stack = %v, want %v", got, want)
	}
}

func TestExtractTechStack_EmptyInput(t *testing.T) {
	got := ExtractTechStack("", "")
	if len(got) != 0 {
		t.Errorf("tech stack = %v, want empty", got)
	}
}

func TestTier_Thresholds(t *testing.T) {
	e := NewExtractor(Config{MaxScore: 100, UrgentMin: 30, MediumMin: 15})

	tests := []struct {
		score int
		want  string
	}{
		{0, "low"},
		{14, "low"},
		{15, "medium"},
		{29, "medium"},
		{30, "urgent"},
		{100, "urgent"},
	}

	for _, tt := range tests {
		if got := e.Tier(tt.score); got != tt.want {
			t.Errorf("Tier(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestWithRules_OverridesWeight(t *testing.T) {
	e := newTestExtractor()

	rules := []model.KeywordRule{
		{Platform: "", Keyword: "urgent", Weight: 50, Active: true},
	}
	merged := e.WithRules("reddit", rules)

	if got := merged.Score("", "urgent", 1.0); got != 50 {
		t.Errorf("score with override = %d, want 50", got)
	}

	// 元のExtractorは変更されない
	if got := e.Score("", "urgent", 1.0); got != 10 {
		t.Errorf("original extractor score = %d, want 10", got)
	}
}

func TestWithRules_AddsNewKeyword(t *testing.T) {
	e := newTestExtractor()

	rules := []model.KeywordRule{
		{Platform: "", Keyword: "data loss", Weight: 25, Active: true},
	}
	merged := e.WithRules("reddit", rules)

	if got := merged.Score("", "we have data loss", 1.0); got != 25 {
		t.Errorf("score with new rule = %d, want 25", got)
	}

	kws := merged.Keywords("", "urgent data loss")
	want := []string{"urgent", "data loss"}
	if !reflect.DeepEqual(kws, want) {
		t.Errorf("keywords = %v, want %v（新規フレーズはテーブル末尾）", kws, want)
	}
}

func TestWithRules_InactiveRuleIgnored(t *testing.T) {
	e := newTestExtractor()

	rules := []model.KeywordRule{
		{Platform: "", Keyword: "urgent", Weight: 99, Active: false},
	}
	merged := e.WithRules("reddit", rules)

	if got := merged.Score("", "urgent", 1.0); got != 10 {
		t.Errorf("score = %d, want 10（非アクティブルールは無視）", got)
	}
}

func TestWithRules_PlatformMismatchIgnored(t *testing.T) {
	e := newTestExtractor()

	rules := []model.KeywordRule{
		{Platform: "upwork", Keyword: "urgent", Weight: 99, Active: true},
	}
	merged := e.WithRules("reddit", rules)

	if got := merged.Score("", "urgent", 1.0); got != 10 {
		t.Errorf("score = %d, want 10（他プラットフォームのルールは無視）", got)
	}
}

func TestExtract_CombinesAllFields(t *testing.T) {
	e := newTestExtractor()

	title := "Urgent help needed with React site"
	content := "Our react app is broken in production, will pay for a fix. Budget: $500"

	got := e.Extract(model.PlatformReddit, title, content, 1.0)

	if got.UrgencyScore < 22 {
		t.Errorf("UrgencyScore = %d, want >= 22", got.UrgencyScore)
	}
	if len(got.KeywordsMatched) == 0 {
		t.Error("KeywordsMatched should not be empty")
	}
	if len(got.TechStack) == 0 || got.TechStack[0] != "react" {
		t.Errorf("TechStack = %v, want to start with react", got.TechStack)
	}
	if got.BudgetRange != "Budget: $500" {
		t.Errorf("BudgetRange = %q, want %q", got.BudgetRange, "Budget: $500")
	}
	if got.EstimatedValue != 500 {
		t.Errorf("EstimatedValue = %v, want 500", got.EstimatedValue)
	}
}

func TestExtract_EstimatedValueMatchesEstimateValue(t *testing.T) {
	e := newTestExtractor()

	title := "urgent fix needed"
	content := "will pay $250 for someone to fix my site today"

	got := e.Extract(model.PlatformReddit, title, content, 1.0)
	want := EstimateValue(model.PlatformReddit, title, content)

	if got.EstimatedValue != want {
		t.Errorf("EstimatedValue = %v, want %v", got.EstimatedValue, want)
	}
	if got.EstimatedValue == 0 {
		t.Error("EstimatedValue should be non-zero when the post names an amount")
	}
}

func TestExtract_EstimatedValueCappedPerPlatform(t *testing.T) {
	e := newTestExtractor()

	content := "will pay $999,999 seriously"

	// redditの上限は10000
	if got := e.Extract(model.PlatformReddit, "", content, 1.0); got.EstimatedValue != 10000 {
		t.Errorf("EstimatedValue(reddit) = %v, want 10000", got.EstimatedValue)
	}
	// upworkの上限は50000
	if got := e.Extract(model.PlatformUpwork, "", content, 1.0); got.EstimatedValue != 50000 {
		t.Errorf("EstimatedValue(upwork) = %v, want 50000", got.EstimatedValue)
	}
}

func TestExtract_EmptyInputNeverFails(t *testing.T) {
	e := newTestExtractor()

	got := e.Extract(model.PlatformReddit, "", "", 1.0)

	if got.UrgencyScore != 0 {
		t.Errorf("UrgencyScore = %d, want 0", got.UrgencyScore)
	}
	if len(got.KeywordsMatched) != 0 {
		t.Errorf("KeywordsMatched = %v, want empty", got.KeywordsMatched)
	}
	if len(got.TechStack) != 0 {
		t.Errorf("TechStack = %v, want empty", got.TechStack)
	}
	if got.BudgetRange != "" {
		t.Errorf("BudgetRange = %q, want empty", got.BudgetRange)
	}
	if got.EstimatedValue < 0 {
		t.Errorf("EstimatedValue = %v, want >= 0", got.EstimatedValue)
	}
}
