// Package scoring はシグナルの緊急度スコアリングとメタデータ抽出を提供する。
//
// 抽出処理はすべて純粋関数として実装されており、I/Oも内部状態も持たない。
// 同一入力に対して常に同一出力を返し、空入力でも失敗しない。
// スコアの上限とティア閾値はConfigで一元管理され、取り込み側と
// 統計・表示側の両方がこの設定を参照する。
package scoring

import (
	"sort"
	"strings"

	"github.com/hitoshi/beacon/internal/model"
)

// Config はスコアリングのパラメータを保持する。
type Config struct {
	// MaxScore は緊急度スコアの上限。ブースト適用後にこの値でクランプする。
	MaxScore int
	// UrgentMin はurgentティアの下限スコア。
	UrgentMin int
	// MediumMin はmediumティアの下限スコア。
	MediumMin int
}

// DefaultConfig はデフォルトのスコアリング設定を返す。
func DefaultConfig() Config {
	return Config{
		MaxScore:  100,
		UrgentMin: 30,
		MediumMin: 15,
	}
}

// keywordWeight はキーワードフレーズと点数の組。
// テーブルの宣言順がKeywordsMatchedの出力順になる。
type keywordWeight struct {
	phrase string
	points int
}

// defaultKeywordWeights はデフォルトの緊急度キーワードテーブル。
// KeywordRuleで上書き・拡張できる。
var defaultKeywordWeights = []keywordWeight{
	{"urgent", 10},
	{"emergency", 15},
	{"asap", 12},
	{"immediately", 10},
	{"help", 5},
	{"stuck", 8},
	{"broken", 7},
	{"not working", 6},
	{"deadline", 9},
	{"production down", 20},
	{"site down", 15},
	{"will pay", 15},
	{"budget", 10},
	{"hire", 8},
	{"freelancer", 6},
	{"frustrated", 5},
	{"desperate", 8},
	{"please help", 7},
}

// techSurfaceForms は技術スタック語彙。正規タグとその表記ゆれの対応を持つ。
// 宣言順がTechStackの出力順になる。
var techSurfaceForms = []struct {
	canonical string
	forms     []string
}{
	{"javascript", []string{"javascript", "js", "node.js", "nodejs", "node"}},
	{"react", []string{"react", "reactjs", "next.js", "nextjs"}},
	{"python", []string{"python", "django", "flask", "fastapi"}},
	{"typescript", []string{"typescript"}},
	{"php", []string{"php", "laravel", "wordpress"}},
	{"vue", []string{"vue"}},
	{"angular", []string{"angular"}},
	{"database", []string{"mysql", "postgresql", "mongodb", "sql", "database"}},
	{"aws", []string{"aws"}},
	{"docker", []string{"docker"}},
	{"api", []string{"api"}},
	{"ecommerce", []string{"shopify", "woocommerce", "magento", "ecommerce", "e-commerce"}},
}

// Extraction はTextSignalExtractorの出力。
type Extraction struct {
	UrgencyScore    int
	KeywordsMatched []string
	TechStack       []string
	BudgetRange     string
	EstimatedValue  float64
}

// Extractor はキーワードテーブルを保持するシグナル抽出器。
// イミュータブルであり、複数のワーカーから並行に使用できる。
type Extractor struct {
	cfg     Config
	weights []keywordWeight
}

// NewExtractor はデフォルトのキーワードテーブルを持つExtractorを生成する。
func NewExtractor(cfg Config) *Extractor {
	if cfg.MaxScore <= 0 {
		cfg.MaxScore = DefaultConfig().MaxScore
	}
	weights := make([]keywordWeight, len(defaultKeywordWeights))
	copy(weights, defaultKeywordWeights)
	return &Extractor{cfg: cfg, weights: weights}
}

// WithRules はKeywordRuleを適用した新しいExtractorを返す。
// アクティブなルールのうち、プラットフォームが一致するもの（空文字列は
// 全プラットフォーム）のみが反映される。既存フレーズと同名のルールは
// 重みを上書きし、新規フレーズはPriority降順でテーブル末尾に追加される。
// レシーバーは変更されない。
func (e *Extractor) WithRules(platform model.Platform, rules []model.KeywordRule) *Extractor {
	applicable := make([]model.KeywordRule, 0, len(rules))
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if r.Platform != "" && r.Platform != platform {
			continue
		}
		applicable = append(applicable, r)
	}
	if len(applicable) == 0 {
		return e
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority > applicable[j].Priority
	})

	merged := make([]keywordWeight, len(e.weights))
	copy(merged, e.weights)

	index := make(map[string]int, len(merged))
	for i, w := range merged {
		index[w.phrase] = i
	}

	for _, r := range applicable {
		phrase := strings.ToLower(strings.TrimSpace(r.Keyword))
		if phrase == "" {
			continue
		}
		if i, ok := index[phrase]; ok {
			merged[i].points = r.Weight
			continue
		}
		index[phrase] = len(merged)
		merged = append(merged, keywordWeight{phrase: phrase, points: r.Weight})
	}

	return &Extractor{cfg: e.cfg, weights: merged}
}

// Extract はタイトルと本文から派生フィールドをまとめて計算する。
// boostはプラットフォーム固有の倍率で、クランプ前にスコアへ適用される。
// platformは見積もり金額の上限の決定に使われる。
func (e *Extractor) Extract(platform model.Platform, title, content string, boost float64) Extraction {
	return Extraction{
		UrgencyScore:    e.Score(title, content, boost),
		KeywordsMatched: e.Keywords(title, content),
		TechStack:       ExtractTechStack(title, content),
		BudgetRange:     ExtractBudget(title + " " + content),
		EstimatedValue:  EstimateValue(platform, title, content),
	}
}

// Score はタイトルと本文から緊急度スコアを計算する。
// タイトルと本文をスペース連結して小文字化し、テーブルの各フレーズが
// 部分文字列として含まれていれば点数を加算する。同じフレーズが複数回
// 出現しても加算は1回のみ。合計にboostを掛けた後、MaxScoreでクランプする。
func (e *Extractor) Score(title, content string, boost float64) int {
	text := strings.ToLower(title + " " + content)

	score := 0
	for _, w := range e.weights {
		if strings.Contains(text, w.phrase) {
			score += w.points
		}
	}

	if boost > 0 && boost != 1.0 {
		score = int(float64(score) * boost)
	}

	if score > e.cfg.MaxScore {
		score = e.cfg.MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Keywords はマッチした緊急度キーワードをテーブルの宣言順で返す。
// マッチがない場合は空スライスを返す。
func (e *Extractor) Keywords(title, content string) []string {
	text := strings.ToLower(title + " " + content)

	matched := make([]string, 0, 4)
	for _, w := range e.weights {
		if strings.Contains(text, w.phrase) {
			matched = append(matched, w.phrase)
		}
	}
	return matched
}

// Tier はスコアを緊急度ティア（urgent/medium/low）に分類する。
// 統計集計と一覧表示の両方でこの分類を使う。
func (e *Extractor) Tier(score int) string {
	switch {
	case score >= e.cfg.UrgentMin:
		return "urgent"
	case score >= e.cfg.MediumMin:
		return "medium"
	default:
		return "low"
	}
}

// Config は抽出器のスコアリング設定を返す。
func (e *Extractor) Config() Config {
	return e.cfg
}

// ExtractTechStack はタイトルと本文から技術スタックタグを抽出する。
// いずれかの表記ゆれが部分文字列として含まれていれば正規タグを採用する。
// 出力は語彙の宣言順で重複なし。マッチがない場合は空スライスを返す。
func ExtractTechStack(title, content string) []string {
	text := strings.ToLower(title + " " + content)

	tags := make([]string, 0, 4)
	for _, entry := range techSurfaceForms {
		for _, form := range entry.forms {
			if strings.Contains(text, form) {
				tags = append(tags, entry.canonical)
				break
			}
		}
	}
	return tags
}
