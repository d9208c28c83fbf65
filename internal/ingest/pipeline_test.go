package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/beacon/internal/config"
	"github.com/hitoshi/beacon/internal/model"
	"github.com/hitoshi/beacon/internal/scoring"
)

// ============================================================
// モック
// ============================================================

type mockSignalStore struct {
	created  bool
	err      error
	failOnID string // このPlatformIDのUpsertはエラーを返す
	upserts  []*model.Signal
}

func (m *mockSignalStore) Upsert(ctx context.Context, signal *model.Signal) (bool, error) {
	if m.failOnID != "" && signal.PlatformID == m.failOnID {
		return false, errors.New("db error")
	}
	if m.err != nil {
		return false, m.err
	}
	m.upserts = append(m.upserts, signal)
	return m.created, nil
}

type mockIgnoreChecker struct {
	ignored map[string]bool
	err     error
}

func (m *mockIgnoreChecker) IsIgnored(ctx context.Context, platform model.Platform, username string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.ignored[platform+"/"+username], nil
}

type mockRuleLister struct {
	rules []model.KeywordRule
	err   error
}

func (m *mockRuleLister) ListActive(ctx context.Context) ([]model.KeywordRule, error) {
	return m.rules, m.err
}

// passthroughSanitizer は入力をそのまま返す。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

// markerSanitizer はサニタイズ結果を固定文字列にする。
// スコアリングがサニタイズ前の本文に対して行われることの検証に使う。
type markerSanitizer struct{}

func (markerSanitizer) Sanitize(raw string) string { return "sanitized" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSourceCfg() config.SourceConfig {
	return config.SourceConfig{
		ScanInterval: time.Minute,
		MinScore:     10,
		MaxAge:       2 * time.Hour,
		Boost:        1.0,
		Enabled:      true,
	}
}

func newTestPipeline(store *mockSignalStore, ignores *mockIgnoreChecker, rules *mockRuleLister) *Pipeline {
	if ignores == nil {
		ignores = &mockIgnoreChecker{}
	}
	if rules == nil {
		rules = &mockRuleLister{}
	}
	return NewPipeline(store, ignores, rules, passthroughSanitizer{},
		scoring.NewExtractor(scoring.DefaultConfig()), discardLogger())
}

func crisisPost() model.RawPost {
	return model.RawPost{
		Platform:   model.PlatformReddit,
		PlatformID: "abc123",
		Title:      "Urgent help needed with React site",
		Content:    "Our react app is broken in production, will pay for a fix",
		Author:     "dev_in_trouble",
		URL:        "https://reddit.com/r/webdev/abc123",
		CreatedAt:  time.Now().UTC(),
	}
}

// ============================================================
// ProcessPost
// ============================================================

func TestProcessPost_StoresNewSignal(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := newTestPipeline(store, nil, nil)

	outcome, err := p.ProcessPost(context.Background(), crisisPost(), p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeStored {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeStored)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("len(upserts) = %d, want 1", len(store.upserts))
	}

	signal := store.upserts[0]
	if signal.Platform != model.PlatformReddit || signal.PlatformID != "abc123" {
		t.Errorf("identity = (%q, %q)", signal.Platform, signal.PlatformID)
	}
	if signal.UrgencyScore < 22 {
		t.Errorf("UrgencyScore = %d, want >= 22", signal.UrgencyScore)
	}
	if len(signal.KeywordsMatched) == 0 {
		t.Error("KeywordsMatchedが空")
	}
	if len(signal.TechStack) == 0 || signal.TechStack[0] != "react" {
		t.Errorf("TechStack = %v", signal.TechStack)
	}
	if signal.EstimatedValue <= 0 {
		t.Errorf("EstimatedValue = %v, want > 0", signal.EstimatedValue)
	}
}

func TestProcessPost_StoresEstimatedValueFromExplicitAmount(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := newTestPipeline(store, nil, nil)

	post := crisisPost()
	post.Content = "Checkout is down in production, will pay $250 to get it fixed today"

	outcome, err := p.ProcessPost(context.Background(), post, p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeStored {
		t.Fatalf("outcome = %q, want %q", outcome, OutcomeStored)
	}
	if got := store.upserts[0].EstimatedValue; got != 250 {
		t.Errorf("EstimatedValue = %v, want 250（本文の明示金額が反映されるべき）", got)
	}
}

func TestProcessPost_DuplicateLeavesExistingUntouched(t *testing.T) {
	store := &mockSignalStore{created: false}
	p := newTestPipeline(store, nil, nil)

	outcome, err := p.ProcessPost(context.Background(), crisisPost(), p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeDuplicate {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeDuplicate)
	}
}

func TestProcessPost_BelowThresholdNotStored(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := newTestPipeline(store, nil, nil)

	post := crisisPost()
	post.Title = "nothing interesting"
	post.Content = "just a regular post"

	outcome, err := p.ProcessPost(context.Background(), post, p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeBelowThreshold {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeBelowThreshold)
	}
	if len(store.upserts) != 0 {
		t.Errorf("閾値未満の投稿が保存された: %d", len(store.upserts))
	}
}

func TestProcessPost_IgnoredAuthorSkipped(t *testing.T) {
	store := &mockSignalStore{created: true}
	ignores := &mockIgnoreChecker{ignored: map[string]bool{"reddit/dev_in_trouble": true}}
	p := newTestPipeline(store, ignores, nil)

	outcome, err := p.ProcessPost(context.Background(), crisisPost(), p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeIgnored {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeIgnored)
	}
	if len(store.upserts) != 0 {
		t.Errorf("無視作成者の投稿が保存された: %d", len(store.upserts))
	}
}

func TestProcessPost_StalePostDiscarded(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := newTestPipeline(store, nil, nil)

	post := crisisPost()
	post.CreatedAt = time.Now().Add(-3 * time.Hour) // MaxAge(2h)より古い

	outcome, err := p.ProcessPost(context.Background(), post, p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	if outcome != OutcomeStale {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeStale)
	}
}

func TestProcessPost_ScoresBeforeSanitizing(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := NewPipeline(store, &mockIgnoreChecker{}, &mockRuleLister{}, markerSanitizer{},
		scoring.NewExtractor(scoring.DefaultConfig()), discardLogger())

	outcome, err := p.ProcessPost(context.Background(), crisisPost(), p.extractor, testSourceCfg())
	if err != nil {
		t.Fatalf("ProcessPost returned error: %v", err)
	}
	// スコアはサニタイズ前の本文から計算され、保存本文はサニタイズ済み
	if outcome != OutcomeStored {
		t.Fatalf("outcome = %q, want %q", outcome, OutcomeStored)
	}
	if store.upserts[0].Content != "sanitized" {
		t.Errorf("Content = %q, want %q", store.upserts[0].Content, "sanitized")
	}
	if store.upserts[0].UrgencyScore < 22 {
		t.Errorf("UrgencyScore = %d, サニタイズ前の本文でスコアリングすべき", store.upserts[0].UrgencyScore)
	}
}

func TestProcessPost_UpsertErrorReturnsFailure(t *testing.T) {
	store := &mockSignalStore{err: errors.New("connection refused")}
	p := newTestPipeline(store, nil, nil)

	outcome, err := p.ProcessPost(context.Background(), crisisPost(), p.extractor, testSourceCfg())
	if err == nil {
		t.Fatal("Upsert失敗時はエラーを返すべき")
	}
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeFailed)
	}
}

func TestProcessPost_BoostAppliedFromSourceConfig(t *testing.T) {
	store := &mockSignalStore{created: true}
	p := newTestPipeline(store, nil, nil)

	// "help"(5)のみ。閾値10だが、ブースト2.0で10に届く
	post := crisisPost()
	post.Title = "help"
	post.Content = ""

	cfg := testSourceCfg()
	outcome, _ := p.ProcessPost(context.Background(), post, p.extractor, cfg)
	if outcome != OutcomeBelowThreshold {
		t.Errorf("ブーストなしでは閾値未満のはず: %q", outcome)
	}

	cfg.Boost = 2.0
	outcome, _ = p.ProcessPost(context.Background(), post, p.extractor, cfg)
	if outcome != OutcomeStored {
		t.Errorf("ブースト適用後は保存されるはず: %q", outcome)
	}
}

// ============================================================
// ExtractorForCycle
// ============================================================

func TestExtractorForCycle_MergesActiveRules(t *testing.T) {
	rules := &mockRuleLister{rules: []model.KeywordRule{
		{Platform: "", Keyword: "data loss", Weight: 25, Active: true},
	}}
	p := newTestPipeline(&mockSignalStore{created: true}, nil, rules)

	extractor := p.ExtractorForCycle(context.Background(), model.PlatformReddit)
	if got := extractor.Score("", "we have data loss", 1.0); got != 25 {
		t.Errorf("score = %d, want 25（動的ルールが反映されるべき）", got)
	}
}

func TestExtractorForCycle_RuleLoadFailureFallsBackToStaticTable(t *testing.T) {
	rules := &mockRuleLister{err: errors.New("db down")}
	p := newTestPipeline(&mockSignalStore{created: true}, nil, rules)

	extractor := p.ExtractorForCycle(context.Background(), model.PlatformReddit)
	if got := extractor.Score("", "urgent", 1.0); got != 10 {
		t.Errorf("score = %d, want 10（静的テーブルで続行すべき）", got)
	}
}
