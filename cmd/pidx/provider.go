package main

import (
	"context"
	"fmt"

	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/embedding"
)

// newProvider builds the configured embedding provider, wrapped in a cache.
// The returned closer releases the on-disk cache and may be nil.
func newProvider(cfg *config.Config, dataDir string, getenv func(string) string) (embedding.Provider, func() error, error) {
	ec := cfg.Embedding

	var inner embedding.Provider
	switch ec.Provider {
	case config.ProviderHash:
		inner = embedding.NewHashProvider(ec.Dimensions)

	case config.ProviderOllama:
		var opts []embedding.OllamaOption
		if ec.BaseURL != "" {
			opts = append(opts, embedding.WithBaseURL(ec.BaseURL))
		}
		if ec.Model != "" {
			opts = append(opts, embedding.WithModel(ec.Model))
		}
		if ec.Dimensions > 0 {
			opts = append(opts, embedding.WithDimensions(ec.Dimensions))
		}
		if ec.RateLimit > 0 {
			opts = append(opts, embedding.WithRateLimit(ec.RateLimit))
		}
		inner = embedding.NewOllamaProvider(opts...)

	case config.ProviderOpenAI:
		key := cfg.APIKey(getenv)
		if key == "" {
			return nil, nil, fmt.Errorf("no API key for openai: set %s or openai_api_key in the global config", ec.APIKeyEnv)
		}
		var opts []embedding.OpenAIOption
		if ec.BaseURL != "" {
			opts = append(opts, embedding.WithOpenAIBaseURL(ec.BaseURL))
		}
		if ec.Model != "" {
			opts = append(opts, embedding.WithOpenAIModel(ec.Model))
		}
		if ec.Dimensions > 0 {
			opts = append(opts, embedding.WithOpenAIDimensions(ec.Dimensions))
		}
		if ec.RateLimit > 0 {
			opts = append(opts, embedding.WithOpenAIRateLimit(ec.RateLimit))
		}
		p, err := embedding.NewOpenAIProvider(key, opts...)
		if err != nil {
			return nil, nil, err
		}
		inner = p

	default:
		return nil, nil, config.ValidateProvider(ec.Provider)
	}

	var cacheOpts []embedding.CacheOption
	if ec.CacheSize > 0 {
		cacheOpts = append(cacheOpts, embedding.WithCacheSize(ec.CacheSize))
	}
	if ec.Cache && dataDir != "" {
		if err := ensureDir(dataDir); err != nil {
			return nil, nil, err
		}
		cacheOpts = append(cacheOpts, embedding.WithDiskCache(config.EmbeddingCachePath(dataDir)))
	}
	cached, err := embedding.NewCachedProvider(inner, cacheOpts...)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}

// readier is implemented by providers that can check their backend.
type readier interface {
	Ready(ctx context.Context) error
}

// checkReady runs the provider's readiness check, looking through caches.
func checkReady(ctx context.Context, p embedding.Provider) error {
	for {
		if r, ok := p.(readier); ok {
			return r.Ready(ctx)
		}
		u, ok := p.(interface{ Unwrap() embedding.Provider })
		if !ok {
			return nil
		}
		p = u.Unwrap()
	}
}
