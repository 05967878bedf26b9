package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/loader"
	"github.com/sarchlab/mipsim/timing/config"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/trace"
)

// errExit is returned by parseCommand when the user asks to quit.
var errExit = errors.New("exit")

// options collects what the flags select for every run.
type options struct {
	config     *config.SimConfig
	functional bool
	verbose    bool
	slog       bool
	monitor    *monitoring.Monitor
	stdout     io.Writer
}

// simulate runs the program described by inPath and writes the text trace
// to outPath.
func simulate(opts options, inPath, outPath string) (core.Status, error) {
	in, err := loader.Load(inPath)
	if err != nil {
		return core.StatusFailed, err
	}

	cpu, program, err := in.Build(opts.config)
	if err != nil {
		return core.StatusFailed, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return core.StatusFailed, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	text := trace.NewTextLogger(f)
	loggers := trace.MultiLogger{text}
	if opts.slog {
		loggers = append(loggers, trace.NewSlogLogger(nil))
	}

	var status core.Status
	var runErr error
	if opts.functional {
		status, runErr = runFunctional(opts, cpu, program, loggers)
	} else {
		status, runErr = runTiming(opts, cpu, program, loggers)
	}

	if err := text.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write output file: %w", err)
	}

	if opts.slog {
		args := []any{"input", inPath, "output", outPath, "status", status.String()}
		if runErr != nil {
			args = append(args, "error", runErr.Error())
		}
		trace.Trace("Run", args...)
	}

	return status, runErr
}

func runTiming(
	opts options,
	cpu *emu.CPU,
	program *insts.Program,
	logger trace.MultiLogger,
) (core.Status, error) {
	recorder := trace.NewRecorder()
	if opts.verbose {
		logger = append(logger, recorder)
	}

	engine := sim.NewSerialEngine()
	c := opts.config.Apply(core.NewBuilder()).
		WithEngine(engine).
		WithLogger(logger).
		Build("Core", cpu, program)

	if opts.monitor != nil {
		opts.monitor.RegisterEngine(engine)
		opts.monitor.RegisterComponent(c)
	}

	res, err := c.Run()

	if opts.verbose {
		fmt.Fprintln(opts.stdout, trace.RenderDiagram(recorder.Records()))
		fmt.Fprintln(opts.stdout, trace.RenderState(res.Final))
		fmt.Fprintf(opts.stdout, "Status: %s\n", res.Status)
		fmt.Fprintf(opts.stdout, "Retired: %d  Squashed: %d  Stalls: %d  Hazards: %d  Flushes: %d\n",
			res.Stats.Instructions, res.Stats.Squashed, res.Stats.Stalls,
			res.Stats.DataHazards, res.Stats.Flushes)
	}

	return res.Status, err
}

func runFunctional(
	opts options,
	cpu *emu.CPU,
	program *insts.Program,
	logger trace.Logger,
) (core.Status, error) {
	var emuOpts []emu.EmulatorOption
	if opts.config.MaxCycles > 0 {
		emuOpts = append(emuOpts, emu.WithMaxInstructions(opts.config.MaxCycles))
	}

	e := emu.NewEmulator(cpu, program, emuOpts...)
	err := e.Run()

	final := core.Snapshot(cpu, 0)
	logger.LogFinalState(final)

	if opts.verbose {
		fmt.Fprintln(opts.stdout, trace.RenderState(final))
		fmt.Fprintf(opts.stdout, "Instructions executed: %d\n", e.InstructionCount())
	}

	switch {
	case errors.Is(err, emu.ErrMaxInstructions):
		return core.StatusCycleCapReached, nil
	case err != nil:
		return core.StatusFailed, err
	default:
		return core.StatusDrained, nil
	}
}

// parseCommand reads one interactive command. It accepts
// "simulate <input> <output>", "<input> <output>" and "exit".
func parseCommand(line string) (inPath, outPath string, err error) {
	fields := strings.Fields(line)

	if len(fields) == 1 && strings.EqualFold(fields[0], "exit") {
		return "", "", errExit
	}

	if len(fields) > 0 && fields[0] == "simulate" {
		fields = fields[1:]
	}

	if len(fields) != 2 {
		return "", "", fmt.Errorf("expected <input> <output>, got %q", strings.TrimSpace(line))
	}

	return fields[0], fields[1], nil
}

// exitCode maps the outcome of a run to the process exit status.
func exitCode(status core.Status, err error) int {
	switch {
	case err != nil:
		return 1
	case status == core.StatusCycleCapReached:
		return 2
	default:
		return 0
	}
}
