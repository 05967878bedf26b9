// Package core provides the simulation driver. A Core ticks the pipeline
// once per cycle as an akita ticking component, records the trace and stops
// when the pipeline drains, an instruction fails, or the cycle cap is hit.
package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/timing/pipeline"
	"github.com/sarchlab/mipsim/trace"
)

// Status tells how a run ended.
type Status int

const (
	// StatusRunning means the core has not stopped yet.
	StatusRunning Status = iota
	// StatusDrained means every stage emptied after the program finished.
	StatusDrained
	// StatusCycleCapReached means the run was cut off by the cycle cap.
	StatusCycleCapReached
	// StatusFailed means an instruction raised a fatal error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDrained:
		return "drained"
	case StatusCycleCapReached:
		return "cycle cap reached"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a run. It is filled in for every status,
// including failed runs, so partial traces can be inspected.
type Result struct {
	Status  Status
	Cycles  uint64
	Records []trace.Record
	Final   trace.FinalState
	Stats   pipeline.Statistics
}

// Core drives a pipeline cycle by cycle.
type Core struct {
	*sim.TickingComponent

	cpu      *emu.CPU
	pipeline *pipeline.Pipeline
	logger   trace.Logger

	maxCycles uint64
	records   []trace.Record
	status    Status
	err       error
	finalized bool
}

// CPU returns the architectural state the core executes against.
func (c *Core) CPU() *emu.CPU {
	return c.cpu
}

// Pipeline returns the underlying pipeline.
func (c *Core) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Status returns the current run status.
func (c *Core) Status() Status {
	return c.status
}

// Err returns the error that stopped the run, if any.
func (c *Core) Err() error {
	return c.err
}

// Records returns the cycles recorded so far.
func (c *Core) Records() []trace.Record {
	return c.records
}

// Tick advances the pipeline by one cycle. It reports no progress once the
// core has stopped, which lets the engine run out of events.
//
// The cycle cap bounds pipeline ticks, including the final tick that finds
// the pipeline empty.
func (c *Core) Tick() (madeProgress bool) {
	if c.status != StatusRunning {
		return false
	}

	if c.maxCycles > 0 && c.pipeline.Stats().Cycles >= c.maxCycles {
		c.status = StatusCycleCapReached
		return false
	}

	err := c.pipeline.Tick()
	if err == nil && c.pipeline.Drained() {
		c.status = StatusDrained
		return false
	}

	c.record()

	if err != nil {
		c.status = StatusFailed
		c.err = err
		return false
	}

	return true
}

func (c *Core) record() {
	rec := trace.Record{Cycle: uint64(len(c.records) + 1)}

	for _, slot := range c.pipeline.Slots() {
		switch {
		case slot.Inst == nil:
		case slot.Bubble():
			rec.Bubbles = append(rec.Bubbles, trace.Bubble{
				ExecID: slot.Inst.ExecID,
				Stage:  slot.Stage,
			})
		default:
			rec.Entries = append(rec.Entries, trace.Entry{
				ExecID:  slot.Inst.ExecID,
				Stage:   slot.Stage,
				Stalled: slot.Stalled,
			})
		}
	}

	rec.Sort()
	c.records = append(c.records, rec)

	if c.logger != nil {
		c.logger.LogCycle(rec)
	}
}

// Run starts ticking on the engine and returns when the engine runs out of
// events. The final state is logged and returned even when err is not nil.
func (c *Core) Run() (*Result, error) {
	c.TickNow()

	if err := c.Engine.Run(); err != nil && c.err == nil {
		c.err = err
	}

	return c.finish()
}

// Simulate ticks the pipeline directly, without the event engine, until the
// core stops.
func (c *Core) Simulate() (*Result, error) {
	for c.Tick() {
	}

	return c.finish()
}

func (c *Core) finish() (*Result, error) {
	final := c.FinalState()

	if !c.finalized && c.logger != nil {
		c.logger.LogFinalState(final)
	}
	c.finalized = true

	res := &Result{
		Status:  c.status,
		Cycles:  uint64(len(c.records)),
		Records: c.records,
		Final:   final,
		Stats:   c.pipeline.Stats(),
	}

	return res, c.err
}

// FinalState snapshots the registers and every written memory word.
func (c *Core) FinalState() trace.FinalState {
	return Snapshot(c.cpu, uint64(len(c.records)))
}

// Snapshot captures the architectural state of cpu after the given number
// of cycles. PC is left out.
func Snapshot(cpu *emu.CPU, cycles uint64) trace.FinalState {
	s := trace.FinalState{Cycles: cycles}

	regs := cpu.RegFile()
	for _, name := range regs.Names() {
		s.Registers = append(s.Registers, trace.RegisterValue{
			Name:  name,
			Value: regs.ReadReg(name),
		})
	}

	mem := cpu.Memory()
	for _, addr := range mem.Addresses() {
		s.Memory = append(s.Memory, trace.MemoryWord{
			Addr:  addr,
			Value: mem.Read(addr),
		})
	}

	return s
}
