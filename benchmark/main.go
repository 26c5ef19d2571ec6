// Package main provides a performance benchmarking tool for the Viability CLI.
// It generates synthetic data directories of increasing size, measures execution
// times for each command type with one worker and with many, treating the first
// successful run as cold and averaging the rest as warm, and writes CSV output
// for performance analysis and documentation.
//
// Prerequisites:
// - viability binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic data directories are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs per worker count).
type BenchmarkResult struct {
	Size       string
	Command    string
	SingleCold string
	SingleWarm string
	MultiCold  string
	MultiWarm  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Sizes    map[string]int // label -> number of countries
	Order    []string
	Commands [][]string
}

// datasetColumns lists, per dimension, the columns of the generated dataset and
// the upper bound of their random values.
var datasetColumns = map[string]map[string]float64{
	"infrastructure":     {"electricity_coal_pct": 100, "electricity_access_pct": 100, "pm25_exposure": 100},
	"necessity":          {"necessity_energy_fulfillment_score": 100, "necessity_health_score": 100},
	"resource":           {"production_mt": 4000, "r_p_ratio": 200},
	"artificial_support": {"score_direct_subsidy": 1, "score_tax_privilege": 1},
	"ecological":         {"deforestation_ha_per_year": 900000, "land_mined_ha": 400000},
	"economic":           {"coal_rents_pct_of_gdp": 8, "coal_rent_usd": 2e11, "coal_share_electricity": 100},
	"emissions":          {"global_share": 0.5, "carbon_abatement_readiness": 1},
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 2 * time.Minute,
		Workers: 7,
		Runs:    4,
		Sizes: map[string]int{
			"small":  50,
			"medium": 500,
			"large":  5000,
		},
		Order: []string{"small", "medium", "large"},
		Commands: [][]string{
			{"score", "--explain"},
			{"dimensions"},
			{"compare"},
			{"validate"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config)
}

// checkPrerequisites verifies that the viability binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("viability"); err != nil {
		return fmt.Errorf("viability binary not found in PATH")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work directory %s not found", config.WorkDir)
	}
	return nil
}

// generateDataDir writes one CSV per dimension with n synthetic countries.
func generateDataDir(root string, n int) error {
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	for dim, cols := range datasetColumns {
		dir := filepath.Join(root, dim)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		names := make([]string, 0, len(cols))
		for c := range cols {
			names = append(names, c)
		}

		f, err := os.Create(filepath.Join(dir, "synthetic.csv"))
		if err != nil {
			return err
		}
		w := csv.NewWriter(f)
		if err := w.Write(append([]string{"Country", "Year"}, names...)); err != nil {
			_ = f.Close()
			return err
		}
		for i := range n {
			rec := []string{fmt.Sprintf("Country %04d", i), "2022"}
			for _, c := range names {
				rec = append(rec, strconv.FormatFloat(rng.Float64()*cols[c], 'f', 3, 64))
			}
			if err := w.Write(rec); err != nil {
				_ = f.Close()
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured data sizes
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, 1 vs %d workers, %d runs\n",
		len(config.Sizes), config.Timeout, config.Workers, config.Runs)

	for _, size := range config.Order {
		dataDir := filepath.Join(config.WorkDir, "viability-bench-"+size)
		fmt.Printf("Generating %s data set (%d countries) in %s\n", size, config.Sizes[size], dataDir)
		if err := generateDataDir(dataDir, config.Sizes[size]); err != nil {
			return nil, fmt.Errorf("failed to generate %s data: %w", size, err)
		}

		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, size, dataDir, command))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs the single-worker and multi-worker phases for a command
func runBenchmarkSuite(config BenchmarkConfig, size, dataDir string, command []string) BenchmarkResult {
	name := strings.Join(command, " ")
	fmt.Printf("Running %s on %s\n", name, size)

	// Helper to run a benchmark phase
	runPhase := func(workers int) (coldTime, avgTime string) {
		fmt.Printf("  %d worker phase (%d runs)\n", workers, config.Runs)
		cold, times := runBenchmark(config, dataDir, command, workers)
		coldTime = "TIMEOUT"
		if cold > 0 {
			coldTime = fmt.Sprintf("%.3fs", cold)
		}
		if len(times) == 0 {
			return coldTime, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	singleCold, singleWarm := runPhase(1)
	multiCold, multiWarm := runPhase(config.Workers)

	fmt.Printf("  1 worker: cold %s, warm %s; %d workers: cold %s, warm %s\n",
		singleCold, singleWarm, config.Workers, multiCold, multiWarm)

	return BenchmarkResult{
		Size:       size,
		Command:    command[0],
		SingleCold: singleCold,
		SingleWarm: singleWarm,
		MultiCold:  multiCold,
		MultiWarm:  multiWarm,
	}
}

// runBenchmark executes a viability command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dataDir string, command []string, workers int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, command...)
	args = append(args,
		"--data-dir", dataDir,
		"--workers", strconv.Itoa(workers),
		"--limit", "1000",
		"--color", "no",
		"--width", "200",
	)

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("viability", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command[0]) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	switch command {
	case "score":
		return strings.Contains(outputStr, "Scoring completed in") && strings.Contains(outputStr, "workers")
	case "compare":
		return strings.Contains(outputStr, "Compared")
	case "validate":
		return strings.Contains(outputStr, "Score table")
	default:
		return len(outputStr) > 0
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/viability_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"size", "cmd", "single_cold", "single_warm", "multi_cold", "multi_warm"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, r := range results {
		if err := writer.Write([]string{r.Size, r.Command, r.SingleCold, r.SingleWarm, r.MultiCold, r.MultiWarm}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult, config BenchmarkConfig) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command[0])
		for _, r := range results {
			if r.Command == command[0] {
				fmt.Printf("  %-8s: 1 worker: %s / %s, %d workers: %s / %s\n",
					r.Size, r.SingleCold, r.SingleWarm, config.Workers, r.MultiCold, r.MultiWarm)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
