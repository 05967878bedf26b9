// Package main provides a profiling wrapper for MIPSim to identify performance
// bottlenecks in the pipeline model.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/loader"
	"github.com/sarchlab/mipsim/timing/config"
	"github.com/sarchlab/mipsim/timing/core"
)

var (
	functional = flag.Bool("functional", false, "Profile the functional emulator instead of the pipeline")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	repeat     = flag.Int("n", 1000, "number of times to run the program")
	maxCycles  = flag.Uint64("max-cycles", 0, "cycle cap per run (0 = default)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <input.toml>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	in, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading input: %v\n", err)
		atexit.Exit(1)
	}

	cfg := config.DefaultSimConfig()
	if *maxCycles > 0 {
		cfg.MaxCycles = *maxCycles
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(func() { _ = f.Close() })

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(pprof.StopCPUProfile)
	}

	start := time.Now()

	var cycles, instrCount uint64
	for i := 0; i < *repeat; i++ {
		c, n, err := runOnce(in, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in run %d: %v\n", i, err)
			atexit.Exit(1)
		}
		cycles += c
		instrCount += n
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(func() { _ = f.Close() })

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Runs: %d\n", *repeat)
	fmt.Printf("Cycles simulated: %d\n", cycles)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(cycles)/elapsed.Seconds())
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}

	atexit.Exit(0)
}

// runOnce builds a fresh machine from the input and runs it to completion.
func runOnce(in *loader.Input, cfg *config.SimConfig) (cycles, instructions uint64, err error) {
	cpu, program, err := in.Build(cfg)
	if err != nil {
		return 0, 0, err
	}

	if *functional {
		e := emu.NewEmulator(cpu, program, emu.WithMaxInstructions(cfg.MaxCycles))
		err := e.Run()
		return 0, e.InstructionCount(), err
	}

	c := cfg.Apply(core.NewBuilder()).Build("Core", cpu, program)
	res, err := c.Simulate()
	if err != nil {
		return 0, 0, err
	}

	return res.Cycles, res.Stats.Instructions, nil
}
