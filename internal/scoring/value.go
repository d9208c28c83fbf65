package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hitoshi/beacon/internal/model"
)

// defaultValueCap は見積もり金額のプラットフォーム別上限が未定義の場合の上限。
const defaultValueCap = 10000.0

// valueCaps はプラットフォーム別の見積もり金額上限。
var valueCaps = map[model.Platform]float64{
	model.PlatformUpwork: 50000,
	model.PlatformReddit: 10000,
}

// dollarAmountPattern はテキスト中のドル金額を抽出する。
var dollarAmountPattern = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d+)?)`)

// hourlyPattern は時給表記の検出に使う。
var hourlyPattern = regexp.MustCompile(`(?i)/\s*(?:hr|hour)|per\s+hour|hourly`)

// EstimateValue は投稿から案件の概算金額を推定する。
// 緊急度スコアとは独立した低精度のシグナルであり、次の優先順位で決める:
//
//  1. 明示的な金額がある場合はそれを使う（範囲表記は最大値）。
//     時給表記の場合は規模キーワードから推定した時間数を掛ける。
//  2. 金額がない場合は複雑度キーワードから定額を推定する。
//
// 決定的・非負・プラットフォーム別上限でキャップされる。
func EstimateValue(platform model.Platform, title, content string) float64 {
	text := title + " " + content
	lower := strings.ToLower(text)

	value := 0.0

	amounts := extractDollarAmounts(text)
	if len(amounts) > 0 {
		// 範囲表記（$500 - $1000）は最大値を採用
		max := amounts[0]
		for _, a := range amounts[1:] {
			if a > max {
				max = a
			}
		}
		value = max

		// 時給表記の場合は規模から推定した時間数を掛ける
		if hourlyPattern.MatchString(text) {
			value = max * float64(estimateProjectHours(lower))
		}
	} else {
		value = complexityFallback(lower)
	}

	cap, ok := valueCaps[platform]
	if !ok {
		cap = defaultValueCap
	}
	if value > cap {
		value = cap
	}
	if value < 0 {
		value = 0
	}
	return value
}

// extractDollarAmounts はテキスト中のすべてのドル金額を数値に変換して返す。
func extractDollarAmounts(text string) []float64 {
	matches := dollarAmountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		cleaned := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, v)
	}
	return amounts
}

// estimateProjectHours は規模キーワードから案件の時間数を推定する。
func estimateProjectHours(lower string) int {
	small := []string{"quick", "simple", "small", "minor"}
	large := []string{"complex", "large", "full", "complete", "enterprise"}

	for _, kw := range small {
		if strings.Contains(lower, kw) {
			return 15
		}
	}
	for _, kw := range large {
		if strings.Contains(lower, kw) {
			return 70
		}
	}
	return 30
}

// complexityFallback は金額表記がない場合の複雑度ベースの定額推定。
func complexityFallback(lower string) float64 {
	simple := []string{"fix", "bug", "quick", "simple", "small"}
	medium := []string{"website", "web app", "integration", "custom"}
	complexKw := []string{"enterprise", "e-commerce", "ecommerce", "database", "api", "full stack"}

	// 複雑度の高いキーワードを優先して判定する
	for _, kw := range complexKw {
		if strings.Contains(lower, kw) {
			return 2000
		}
	}
	for _, kw := range medium {
		if strings.Contains(lower, kw) {
			return 800
		}
	}
	for _, kw := range simple {
		if strings.Contains(lower, kw) {
			return 200
		}
	}
	return 500
}
