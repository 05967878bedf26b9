// Command benchmark runs the MIPSim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv            Output results in CSV format (default: table)
//	-json           Output results in JSON format
//	-core           Run only the core benchmarks
//	-config         Path to simulator configuration JSON file
//	-no-forwarding  Disable result forwarding
//	-v              Add wall time and descriptions to the table
//
// Example:
//
//	# Compare the pipeline with and without forwarding
//	go run ./cmd/benchmark -csv > forwarding.csv
//	go run ./cmd/benchmark -csv -no-forwarding > stalling.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/mipsim/benchmarks"
	"github.com/sarchlab/mipsim/timing/config"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	configPath := flag.String("config", "", "Path to simulator configuration JSON file")
	noForwarding := flag.Bool("no-forwarding", false, "Disable result forwarding")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	sim := config.DefaultSimConfig()
	if *configPath != "" {
		var err error
		sim, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			atexit.Exit(1)
		}
	}
	if *noForwarding {
		sim.Forwarding = false
	}
	if err := sim.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		atexit.Exit(1)
	}

	hc := benchmarks.DefaultConfig()
	hc.Sim = sim
	hc.Output = os.Stdout
	hc.Verbose = *verbose

	harness := benchmarks.NewHarness(hc)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			atexit.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Printf("Forwarding: %v\n", sim.Forwarding)
		fmt.Printf("Cycle cap:  %d\n\n", sim.MaxCycles)
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Valid {
			atexit.Exit(1)
		}
	}

	atexit.Exit(0)
}
