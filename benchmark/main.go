// Package main provides a performance benchmarking tool for the whoknows CLI.
// It measures ranking times across repositories of different sizes, running
// each test multiple times, treating the first successful cached run as cold
// and averaging the rest as warm, generating CSV output for documentation.
//
// Prerequisites:
// - whoknows binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Target      string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	RepoFiles   map[string][]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	repoBase := os.Args[1]

	config := BenchmarkConfig{
		RepoBase:    repoBase,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		RepoFiles: map[string][]string{
			"csv-parser": {"python/csvpy.cpp"},
			"fd":         {"src/main.rs", "src/walk.rs"},
			"git":        {"builtin/add.c", "builtin/blame.c"},
			"kubernetes": {"cmd/cloud-controller-manager/main.go"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache so the first cached run is genuinely cold
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("whoknows", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the whoknows binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if whoknows is available
	if _, err := exec.LookPath("whoknows"); err != nil {
		return fmt.Errorf("whoknows binary not found in PATH")
	}

	// Check if repositories exist
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)

		repoPath := filepath.Join(config.RepoBase, repo)
		files := config.RepoFiles[repo]

		result := runBenchmarkSuite(config, repo, repoPath, files)
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one repository
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, files []string) BenchmarkResult {
	target := strings.Join(files, " ")
	fmt.Printf("Running files ranking on %s (%s)\n", repo, target)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, repoPath, files, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Target:      target,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a whoknows ranking multiple times with the specified
// cache backend and returns the cold time plus warm times
func runBenchmark(config BenchmarkConfig, repoPath string, files []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"files", "--cache-backend", cacheBackend, "--workers", fmt.Sprintf("%d", config.Workers)}
	args = append(args, files...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("whoknows", args...)
		cmd.Dir = repoPath

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that the ranking produced its footer line.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Ranked")
}

// saveResults writes benchmark results to a CSV file
func saveResults(results []BenchmarkResult) error {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repository", "target", "no_cache_time", "cold_time", "warm_time"}); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{r.Repository, r.Target, r.NoCacheTime, r.ColdTime, r.WarmTime}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// printSummary prints a human-readable summary of all results
func printSummary(results []BenchmarkResult) {
	fmt.Println("\nBenchmark Summary")
	fmt.Println("=================")
	for _, r := range results {
		fmt.Printf("%-12s %-40s no-cache=%-10s cold=%-10s warm=%s\n",
			r.Repository, r.Target, r.NoCacheTime, r.ColdTime, r.WarmTime)
	}
	fmt.Println("\nResults saved to benchmark_results.csv")
}
