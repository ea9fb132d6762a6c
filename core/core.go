// Package core has core logic for aggregation, scoring and ranking.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/whoknows/whoknows/core/agg"
	"github.com/whoknows/whoknows/core/algo"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/internal/outwriter"
	"github.com/whoknows/whoknows/schema"
)

// ExecuteRankFiles ranks the knowledge holders of each requested file and
// prints the results. It serves as the main entry point for the 'files' mode.
func ExecuteRankFiles(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	rankings, err := runRankingCore(ctx, cfg, client, mgr, time.Now())
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintFileRankings(rankings, cfg, duration)
}

// GetFileRankings runs the ranking pipeline and returns the results without
// printing them. Used by the MCP server.
func GetFileRankings(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.FileRanking, error) {
	client := contract.NewLocalGitClient()
	return runRankingCore(ctx, cfg, client, mgr, time.Now())
}

// runRankingCore performs the common fetch, aggregation, scoring and ranking
// steps and records the run when tracking is configured.
func runRankingCore(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, now time.Time) ([]schema.FileRanking, error) {
	// --- 0. Begin run tracking (if configured) ---
	var runID int64
	runStore := mgr.GetRunStore()
	if runStore != nil {
		configParams := map[string]any{
			"repo_path": cfg.RepoPath,
			"files":     len(cfg.Files),
			"weights":   cfg.Weights,
			"workers":   cfg.Workers,
			"limit":     cfg.ResultLimit,
			"summary":   cfg.Summary,
		}
		var err error
		runID, err = runStore.BeginRun(time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Fetch phase (parallel, cached) ---
	recordsByFile, err := gatherRecords(ctx, cfg, client, mgr)
	if err != nil {
		return nil, err
	}

	// --- 2. Aggregation, scoring, ranking ---
	var rankings []schema.FileRanking
	if cfg.Summary {
		var combined []schema.AttributionRecord
		for _, records := range recordsByFile {
			combined = append(combined, records...)
		}
		authors, err := rankRecords(combined, cfg, now)
		if err != nil {
			return nil, err
		}
		rankings = []schema.FileRanking{{
			Path:    fmt.Sprintf("summary of %d files", len(cfg.Files)),
			Authors: authors,
		}}
	} else {
		rankings = make([]schema.FileRanking, len(cfg.Files))
		for i, path := range cfg.Files {
			authors, err := rankRecords(recordsByFile[i], cfg, now)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			rankings[i] = schema.FileRanking{Path: path, Authors: authors}
		}
	}

	// --- 3. End run tracking ---
	if runStore != nil && runID > 0 {
		for _, r := range rankings {
			if err := runStore.RecordAuthorScores(runID, r.Path, r.Authors); err != nil {
				contract.LogWarn("Failed to record author scores", err)
			}
		}
		if err := runStore.EndRun(runID, time.Now(), len(rankings)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return rankings, nil
}

// gatherRecords fetches and parses blame output for every file using a
// worker pool of cfg.Workers goroutines. Results keep the input file order.
func gatherRecords(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) ([][]schema.AttributionRecord, error) {
	type fetchResult struct {
		idx     int
		records []schema.AttributionRecord
		err     error
	}

	idxCh := make(chan int, len(cfg.Files))
	resultCh := make(chan fetchResult, len(cfg.Files))
	var wg sync.WaitGroup

	// Start worker pool
	for range cfg.Workers {
		wg.Go(func() {
			for i := range idxCh {
				records, err := cachedBlameRecords(ctx, cfg, client, mgr, cfg.Files[i])
				resultCh <- fetchResult{idx: i, records: records, err: err}
			}
		})
	}

	// Send file indexes to the worker channel
	for i := range cfg.Files {
		idxCh <- i
	}
	close(idxCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(resultCh)

	recordsByFile := make([][]schema.AttributionRecord, len(cfg.Files))
	var firstErr error
	for r := range resultCh {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", cfg.Files[r.idx], r.err)
			}
			continue
		}
		recordsByFile[r.idx] = r.records
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return recordsByFile, nil
}

// rankRecords turns one record set into a ranked author list: aggregate,
// score, order, apply display filters, then cut to the result limit. A file
// with no attribution at all yields an empty list rather than an error.
func rankRecords(records []schema.AttributionRecord, cfg *contract.Config, now time.Time) ([]schema.AuthorAggregate, error) {
	records = applyIdentityKey(records, cfg.IdentityKey)

	aggs, err := agg.Aggregate(records, cfg.LineRanges)
	if errors.Is(err, schema.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	algo.ScoreAuthors(aggs, cfg.Weights, now)
	ranked := algo.RankAuthors(aggs, 0)
	ranked = applyDisplayFilters(ranked, cfg)
	if cfg.ResultLimit > 0 && len(ranked) > cfg.ResultLimit {
		ranked = ranked[:cfg.ResultLimit]
	}
	return ranked, nil
}

// applyIdentityKey rewrites author emails through the identity-merging hook.
// A nil hook means exact emails are the keys and records pass unchanged.
func applyIdentityKey(records []schema.AttributionRecord, keyFn contract.IdentityKeyFunc) []schema.AttributionRecord {
	if keyFn == nil {
		return records
	}
	out := make([]schema.AttributionRecord, len(records))
	for i, r := range records {
		r.AuthorEmail = keyFn(r.AuthorEmail)
		out[i] = r
	}
	return out
}

// applyDisplayFilters keeps authors matching any email filter and any name
// filter. Empty filter lists keep everyone.
func applyDisplayFilters(authors []schema.AuthorAggregate, cfg *contract.Config) []schema.AuthorAggregate {
	if len(cfg.EmailFilters) == 0 && len(cfg.NameFilters) == 0 {
		return authors
	}
	out := make([]schema.AuthorAggregate, 0, len(authors))
	for _, a := range authors {
		if contract.MatchesAnyFilter(a.Email, cfg.EmailFilters) && contract.MatchesAnyFilter(a.Name, cfg.NameFilters) {
			out = append(out, a)
		}
	}
	return out
}
