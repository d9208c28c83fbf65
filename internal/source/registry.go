package source

import (
	"errors"
	"log/slog"

	"github.com/hitoshi/beacon/internal/config"
	"github.com/hitoshi/beacon/internal/model"
	"github.com/hitoshi/beacon/internal/security"
)

// buildOrder はアダプターの構築順。ログとワーカー起動順を安定させる。
var buildOrder = []model.Platform{
	model.PlatformReddit,
	model.PlatformUpwork,
	model.PlatformGitHub,
	model.PlatformStackOverflow,
	model.PlatformHackerNews,
	model.PlatformProductHunt,
	model.PlatformTwitter,
	model.PlatformMock,
}

// BuildAdapters は設定に基づいて有効なアダプターを構築する。
// 無効化されたソースと、認証情報不足で構築できないソースはスキップされ、
// ログに記録される。構築失敗がプロセス全体の起動を妨げることはない。
func BuildAdapters(cfg *config.Config, guard security.SSRFGuardService, logger *slog.Logger) []Adapter {
	httpClient := guard.NewSafeClient(cfg.FetchTimeout, cfg.FetchMaxSize)
	client := NewClient(httpClient, cfg.FetchMaxSize, defaultRequestsPerMin)

	var adapters []Adapter
	for _, name := range buildOrder {
		sourceCfg, ok := cfg.Sources[name]
		if !ok || !sourceCfg.Enabled {
			logger.Info("ソースは無効化されています", slog.String("platform", name))
			continue
		}

		adapter, err := buildAdapter(name, client, cfg, guard)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				logger.Warn("ソースの設定が不足しているため無効化します",
					slog.String("platform", name),
					slog.String("reason", err.Error()),
				)
			} else {
				logger.Error("ソースの構築に失敗しました",
					slog.String("platform", name),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		adapters = append(adapters, adapter)
	}

	return adapters
}

// buildAdapter はプラットフォーム名に対応するアダプターを構築する。
func buildAdapter(name model.Platform, client *Client, cfg *config.Config, guard security.SSRFGuardService) (Adapter, error) {
	switch name {
	case model.PlatformReddit:
		return NewRedditAdapter(client), nil
	case model.PlatformUpwork:
		return NewUpworkAdapter(client, cfg.UpworkRSSURL, guard)
	case model.PlatformGitHub:
		return NewGitHubAdapter(client, cfg.GitHubToken), nil
	case model.PlatformStackOverflow:
		return NewStackOverflowAdapter(client), nil
	case model.PlatformHackerNews:
		return NewHackerNewsAdapter(client), nil
	case model.PlatformProductHunt:
		return NewProductHuntAdapter(client), nil
	case model.PlatformTwitter:
		return NewTwitterAdapter(client, cfg.TwitterBearerToken)
	case model.PlatformMock:
		return NewMockAdapter(), nil
	}
	return nil, ErrNotConfigured
}
