// Package benchmarks provides the timing benchmark harness for the pipeline
// model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/mipsim/loader"
	"github.com/sarchlab/mipsim/timing/config"
	"github.com/sarchlab/mipsim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Status tells how the run ended
	Status string `json:"status"`

	// SimulatedCycles is the number of traced cycles
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of stage-cycles spent stalled
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of RAW hazard stalls
	DataHazards uint64 `json:"data_hazards"`

	// PipelineFlushes is the number of taken branches
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Squashed is the number of instructions turned into bubbles
	Squashed uint64 `json:"squashed"`

	// Valid is true when the final registers match the expected values
	Valid bool `json:"valid"`

	// Error holds the simulation or validation error, if any
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Input holds the initial registers, memory and assembly source
	Input loader.Input

	// Expected lists register values the run must end with
	Expected map[string]int64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Sim holds the machine and pipeline settings
	Sim *config.SimConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose adds descriptions and wall time to the table output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Sim:    config.DefaultSimConfig(),
		Output: os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Sim == nil {
		config.Sim = DefaultConfig().Sim
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	cpu, program, err := bench.Input.Build(h.config.Sim)
	if err != nil {
		result.Status = core.StatusFailed.String()
		result.Error = err.Error()
		return result
	}

	c := h.config.Sim.Apply(core.NewBuilder()).
		Build("Core", cpu, program)

	start := time.Now()
	res, err := c.Simulate()
	result.WallTime = time.Since(start)

	stats := res.Stats
	result.Status = res.Status.String()
	result.SimulatedCycles = res.Cycles
	result.InstructionsRetired = stats.Instructions
	result.StallCycles = stats.Stalls
	result.DataHazards = stats.DataHazards
	result.PipelineFlushes = stats.Flushes
	result.Squashed = stats.Squashed
	if stats.Instructions > 0 {
		result.CPI = float64(res.Cycles) / float64(stats.Instructions)
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := checkRegisters(bench.Expected, res); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = res.Status == core.StatusDrained

	return result
}

func checkRegisters(expected map[string]int64, res *core.Result) error {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		got, ok := res.Final.Register(name)
		if !ok {
			return fmt.Errorf("register %s not found", name)
		}
		if got != expected[name] {
			return fmt.Errorf("%s = %d, want %d", name, got, expected[name])
		}
	}

	return nil
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.SetTitle("MIPSim Timing Benchmark Results")

	header := table.Row{"Benchmark", "Status", "Cycles", "Insts", "CPI",
		"Stalls", "Hazards", "Flushes", "Squashed", "Valid"}
	if h.config.Verbose {
		header = append(header, "Wall Time", "Description")
	}
	t.AppendHeader(header)

	for _, r := range results {
		row := table.Row{
			r.Name,
			r.Status,
			r.SimulatedCycles,
			r.InstructionsRetired,
			fmt.Sprintf("%.3f", r.CPI),
			r.StallCycles,
			r.DataHazards,
			r.PipelineFlushes,
			r.Squashed,
			r.Valid,
		}
		if h.config.Verbose {
			row = append(row, r.WallTime, r.Description)
		}
		t.AppendRow(row)
	}

	t.Render()

	for _, r := range results {
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "%s: %s\n", r.Name, r.Error)
		}
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.AppendHeader(table.Row{"name", "status", "cycles", "instructions", "cpi",
		"stalls", "data_hazards", "flushes", "squashed", "valid"})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name,
			r.Status,
			r.SimulatedCycles,
			r.InstructionsRetired,
			fmt.Sprintf("%.3f", r.CPI),
			r.StallCycles,
			r.DataHazards,
			r.PipelineFlushes,
			r.Squashed,
			r.Valid,
		})
	}

	t.RenderCSV()
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config is the machine configuration used
	Config *config.SimConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config:    h.config.Sim,
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
