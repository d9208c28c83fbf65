package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SourceConfig はプラットフォームごとのスキャン設定を保持する。
// スキャン間隔・最小スコア閾値は外部APIのレート制限とノイズ量に合わせて
// プラットフォームごとに調整する。
type SourceConfig struct {
	ScanInterval time.Duration // スキャン間隔
	MinScore     int           // この値未満のスコアの投稿は保存しない
	MaxAge       time.Duration // この値より古い投稿は破棄する（再起動時のバックフィル防止）
	Boost        float64       // クランプ前に適用する倍率
	Enabled      bool
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Scoring
	MaxScore  int // 緊急度スコアの上限（クランプ値）
	UrgentMin int // urgentティアの下限スコア
	MediumMin int // mediumティアの下限スコア

	// Sources
	Sources map[string]SourceConfig

	// Source credentials（未設定の場合、認証が必要なソースは無効化される）
	TwitterBearerToken string
	GitHubToken        string
	UpworkRSSURL       string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Retention
	RetentionDays int

	// Rate Limit
	RateLimitPerMin int

	// Server
	ServerPort  string
	MetricsPort string

	// API
	ListLimit int

	// CORS
	CORSAllowedOrigin string
}

// defaultSources はプラットフォームごとのデフォルトスキャン設定。
// 間隔は各プラットフォームのAPIレート制限に合わせている。
var defaultSources = map[string]SourceConfig{
	"reddit":        {ScanInterval: 5 * time.Minute, MinScore: 10, MaxAge: 2 * time.Hour, Boost: 1.0, Enabled: true},
	"upwork":        {ScanInterval: 10 * time.Minute, MinScore: 5, MaxAge: 2 * time.Hour, Boost: 1.0, Enabled: true},
	"github":        {ScanInterval: 10 * time.Minute, MinScore: 8, MaxAge: 6 * time.Hour, Boost: 1.0, Enabled: true},
	"stackoverflow": {ScanInterval: 10 * time.Minute, MinScore: 8, MaxAge: 6 * time.Hour, Boost: 1.0, Enabled: true},
	"hackernews":    {ScanInterval: 15 * time.Minute, MinScore: 8, MaxAge: 6 * time.Hour, Boost: 1.0, Enabled: true},
	"producthunt":   {ScanInterval: 30 * time.Minute, MinScore: 8, MaxAge: 6 * time.Hour, Boost: 1.0, Enabled: true},
	"twitter":       {ScanInterval: 6 * time.Hour, MinScore: 15, MaxAge: 6 * time.Hour, Boost: 1.0, Enabled: true},
	// 開発環境での動作確認用。MOCK_ENABLED=trueで有効化する
	"mock": {ScanInterval: time.Minute, MinScore: 0, MaxAge: 0, Boost: 1.0, Enabled: false},
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MaxScore = getEnvInt("MAX_SCORE", 100)
	cfg.UrgentMin = getEnvInt("URGENT_MIN", 30)
	cfg.MediumMin = getEnvInt("MEDIUM_MIN", 15)

	cfg.TwitterBearerToken = getEnvString("TWITTER_BEARER_TOKEN", "")
	cfg.GitHubToken = getEnvString("GITHUB_TOKEN", "")
	cfg.UpworkRSSURL = getEnvString("UPWORK_RSS_URL", "")

	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 15*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 90)
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9091")
	cfg.ListLimit = getEnvInt("LIST_LIMIT", 50)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	// ソースごとの設定: デフォルト値を環境変数で上書きする
	// 例: REDDIT_SCAN_INTERVAL=10m, GITHUB_MIN_SCORE=12, TWITTER_ENABLED=false
	cfg.Sources = make(map[string]SourceConfig, len(defaultSources))
	for name, def := range defaultSources {
		cfg.Sources[name] = loadSourceConfig(name, def)
	}

	return cfg, nil
}

// loadSourceConfig はプラットフォーム名をプレフィックスにした環境変数で
// デフォルトのスキャン設定を上書きする。
func loadSourceConfig(name string, def SourceConfig) SourceConfig {
	prefix := envPrefix(name)
	return SourceConfig{
		ScanInterval: getEnvDuration(prefix+"_SCAN_INTERVAL", def.ScanInterval),
		MinScore:     getEnvInt(prefix+"_MIN_SCORE", def.MinScore),
		MaxAge:       getEnvDuration(prefix+"_MAX_AGE", def.MaxAge),
		Boost:        getEnvFloat(prefix+"_BOOST", def.Boost),
		Enabled:      getEnvBool(prefix+"_ENABLED", def.Enabled),
	}
}

// envPrefix はプラットフォーム名を環境変数プレフィックスに変換する。
func envPrefix(name string) string {
	upper := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = append(upper, c)
	}
	return string(upper)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
