package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/internal/gitblame"
	"github.com/whoknows/whoknows/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is the staleness window for cached blame output.
const cacheMaxAge = 7 * 24 * time.Hour

// cachedBlameRecords returns the parsed attribution records for one file,
// serving raw porcelain bytes from the blame cache when possible.
func cachedBlameRecords(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, path string) ([]schema.AttributionRecord, error) {
	store := mgr.GetBlameStore()
	if store == nil {
		// Fallback to direct computation
		return fetchBlameRecords(ctx, cfg, client, path)
	}

	key := generateCacheKey(ctx, cfg, client, path)

	// Check for cache hit
	if records := checkCacheHit(store, key); records != nil {
		return records, nil
	}

	// Cache miss: fetch and store
	return fetchAndStore(ctx, cfg, client, store, key, path)
}

// checkCacheHit attempts to retrieve and parse a cached blame output. Any
// failure, staleness, or version mismatch reads as a miss.
func checkCacheHit(store contract.CacheStore, key string) []schema.AttributionRecord {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheMaxAge {
			if records, err := gitblame.ParsePorcelain(data); err == nil {
				return records // Cache hit
			}
		}
	}

	return nil
}

// fetchAndStore runs git blame, caches the raw output, and parses it.
func fetchAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, key string, path string) ([]schema.AttributionRecord, error) {
	raw, err := client.GetBlame(ctx, cfg.RepoPath, path)
	if err != nil {
		return nil, err
	}

	// Store before parsing so a later invocation skips the git call even if
	// this one fails downstream.
	_ = store.Set(key, raw, currentCacheVersion, time.Now().Unix())

	return gitblame.ParsePorcelain(raw)
}

// fetchBlameRecords runs git blame and parses the output without caching.
func fetchBlameRecords(ctx context.Context, cfg *contract.Config, client contract.GitClient, path string) ([]schema.AttributionRecord, error) {
	raw, err := client.GetBlame(ctx, cfg.RepoPath, path)
	if err != nil {
		return nil, err
	}
	return gitblame.ParsePorcelain(raw)
}

// generateCacheKey creates a unique key for one file's blame output. The
// repo HEAD hash is included so the cache invalidates when history moves.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient, path string) string {
	repoHash, err := client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil {
		repoHash = ""
	}

	key := fmt.Sprintf("%s:%s:%s", cfg.RepoPath, path, repoHash)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
