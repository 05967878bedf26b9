// Command mipsim runs an assembly program through the 8-stage pipeline model
// and writes the cycle trace and the final state to a file.
//
// Usage:
//
//	mipsim [flags] <input> <output>
//
// The input is a TOML or YAML file with the initial registers, the initial
// memory words and the program source. With -i, mipsim keeps prompting for
// further "<input> <output>" pairs until "exit" is entered.
//
// Exit status is 0 when every run drained, 2 when the last run hit the cycle
// cap and 1 on errors.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mipsim/timing/config"
	"github.com/sarchlab/mipsim/trace"
)

var (
	configPath   = flag.String("config", "", "Path to simulator configuration JSON file")
	maxCycles    = flag.Uint64("max-cycles", 0, "Cycle cap (overrides the configuration)")
	noForwarding = flag.Bool("no-forwarding", false, "Disable result forwarding")
	logPath      = flag.String("log", "", "Write a JSON trace log to this file")
	functional   = flag.Bool("functional", false, "Run the sequential emulator instead of the pipeline (no write-after-read races)")
	interactive  = flag.Bool("i", false, "Prompt for more input/output pairs after each run")
	monitor      = flag.Bool("monitor", false, "Serve the akita monitoring web page while running")
	verbose      = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: mipsim [options] <input> <output>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		atexit.Exit(1)
	}

	opts := options{
		config:     cfg,
		functional: *functional,
		verbose:    *verbose,
		stdout:     os.Stdout,
	}

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(func() { _ = f.Close() })

		handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: trace.LevelTrace})
		slog.SetDefault(slog.New(handler))
		opts.slog = true
	}

	if *monitor {
		opts.monitor = monitoring.NewMonitor()
		opts.monitor.StartServer()
	}

	code := runOnce(opts, flag.Arg(0), flag.Arg(1))

	if *interactive {
		code = prompt(opts, code)
	}

	atexit.Exit(code)
}

func loadConfig() (*config.SimConfig, error) {
	cfg := config.DefaultSimConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *maxCycles > 0 {
		cfg.MaxCycles = *maxCycles
	}
	if *noForwarding {
		cfg.Forwarding = false
	}

	return cfg, cfg.Validate()
}

func runOnce(opts options, inPath, outPath string) int {
	status, err := simulate(opts, inPath, outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else if *verbose {
		fmt.Printf("Wrote %s\n", outPath)
	}

	return exitCode(status, err)
}

func prompt(opts options, code int) int {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("Please enter the next input/output files ('exit' to exit)")
		if !scanner.Scan() {
			return code
		}

		inPath, outPath, err := parseCommand(scanner.Text())
		if err == errExit {
			return code
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		code = runOnce(opts, inPath, outPath)
	}
}
