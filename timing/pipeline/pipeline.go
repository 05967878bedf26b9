package pipeline

import (
	"fmt"

	"github.com/sarchlab/mipsim/insts"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Fetched is the number of instructions pulled from the program.
	Fetched uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Squashed is the number of in-flight instructions turned into bubbles.
	Squashed uint64
	// Stalls is the number of stage-cycles in which a live instruction did
	// not execute.
	Stalls uint64
	// DataHazards is the number of RAW hazard stalls detected.
	DataHazards uint64
	// Flushes is the number of pipeline flushes (taken branches).
	Flushes uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithForwarding enables or disables result forwarding. When disabled, a
// dependent instruction waits until its producer has left the pipeline.
func WithForwarding(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.hazardUnit.forwarding = enabled
	}
}

// Pipeline implements the in-order 8-stage pipeline
// IF1 -> IF2 -> ID -> EX -> MEM1 -> MEM2 -> MEM3 -> WB.
//
// Each stage holds at most one instruction. Every stage performs its work in
// the same cycle, which is modeled by evaluating the stages in reverse order
// so that each one sees the previous cycle's contents of its predecessor.
type Pipeline struct {
	stages [insts.NumStages]*Stage

	state   insts.State
	program *insts.Program

	hazardUnit *HazardUnit

	stats Statistics
}

// NewPipeline creates an empty pipeline that fetches from program and
// executes against state.
func NewPipeline(state insts.State, program *insts.Program, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		state:      state,
		program:    program,
		hazardUnit: NewHazardUnit(),
	}

	for i := range p.stages {
		p.stages[i] = &Stage{id: insts.Stage(i)}
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Stage returns the stage with the given ordinal.
func (p *Pipeline) Stage(id insts.Stage) *Stage {
	return p.stages[id]
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Drained reports whether every stage is empty or holds a bubble.
func (p *Pipeline) Drained() bool {
	for _, s := range p.stages {
		if !s.Empty() {
			return false
		}
	}
	return true
}

// Slots returns a snapshot of every stage in program flow order.
func (p *Pipeline) Slots() []Slot {
	slots := make([]Slot, len(p.stages))
	for i, s := range p.stages {
		slots[i] = Slot{
			Stage:   s.id,
			Inst:    s.inst,
			Stalled: s.inst != nil && !s.ticked,
		}
	}
	return slots
}

// SetStageInstruction places inst in a stage. It is meant for tests and
// tools that need to seed a specific pipeline state.
func (p *Pipeline) SetStageInstruction(id insts.Stage, inst *insts.Instruction) {
	p.stages[id].inst = inst
}

// SetStalled forces the back-pressure flag of a stage.
func (p *Pipeline) SetStalled(id insts.Stage, stalled bool) {
	p.stages[id].stalled = stalled
}

// Reset empties every stage and clears the statistics. The program and state
// are left untouched.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.inst = nil
		s.stalled = false
		s.ticked = false
	}
	p.stats = Statistics{}
}

// Tick executes one pipeline cycle. Stages are evaluated from WB back to IF1.
// An execution error aborts the cycle. The stages it did not reach keep their
// contents from the previous cycle and count as stalled.
func (p *Pipeline) Tick() error {
	p.stats.Cycles++

	for i := len(p.stages) - 1; i >= 0; i-- {
		if err := p.TickStage(insts.Stage(i)); err != nil {
			p.abort(i)
			return err
		}
	}

	return nil
}

// TickStage runs one stage for the current cycle:
//  1. take back-pressure from a stalled successor,
//  2. fetch: unload at WB, pull from the program at IF1, otherwise adopt
//     the predecessor's instruction,
//  3. stall if a downstream instruction has not produced a required operand,
//  4. execute the instruction's work for this stage,
//  5. handle the control signals it raised.
//
// A stalled instruction stays with the predecessor, which sees the stall
// as back-pressure in the same cycle. The stage itself holds a bubble.
func (p *Pipeline) TickStage(id insts.Stage) error {
	i := int(id)
	s := p.stages[i]
	s.ticked = false

	s.stalled = i+1 < len(p.stages) && p.stages[i+1].stalled
	if s.stalled {
		if !s.Empty() {
			p.stats.Stalls++
		}
		return nil
	}

	p.fetch(i)

	if s.inst == nil {
		return nil
	}

	if !s.inst.Noop && p.IsDataHazard(id+1, s.inst.RequiredAt(id)) {
		s.inst.Stalled = true
		s.inst = nil
		s.stalled = true
		p.stats.DataHazards++
		return nil
	}

	s.ticked = true

	sig, err := s.inst.Tick(id, p.state)
	if err != nil {
		return fmt.Errorf("%s %s at %s: %w", s.inst.Label(), s.inst, id, err)
	}

	s.inst.Stalled = false

	if sig.Has(insts.SignalFlush) {
		// The issuer is done with its work. It retires here and moves on
		// as a bubble together with everything fetched after it.
		p.stats.Flushes++
		p.stats.Instructions++
		s.inst.Invalidate()
		p.Flush(id)
	}

	return nil
}

// fetch fills stage i for this cycle.
func (p *Pipeline) fetch(i int) {
	s := p.stages[i]

	if i == len(p.stages)-1 && s.inst != nil {
		if !s.inst.Noop {
			p.stats.Instructions++
		}
		s.inst.Unload()
	}

	if i == 0 {
		s.inst = p.program.Next(p.state)
		if s.inst != nil {
			s.inst.Load()
			p.stats.Fetched++
		}
		return
	}

	s.inst = p.stages[i-1].inst
}

// abort freezes the stages before failed. They did not run this cycle, and
// the predecessor of failed still references the failing instruction.
func (p *Pipeline) abort(failed int) {
	for j := failed - 1; j >= 0; j-- {
		p.stages[j].ticked = false
	}
	if failed > 0 && p.stages[failed-1].inst == p.stages[failed].inst {
		p.stages[failed-1].inst = nil
	}
}

// IsDataHazard reports whether a stage from `from` to the end of the pipeline
// holds an instruction that writes one of required and cannot forward it yet.
func (p *Pipeline) IsDataHazard(from insts.Stage, required []insts.Operand) bool {
	if int(from) >= len(p.stages) {
		return false
	}
	return p.hazardUnit.IsDataHazard(p.stages[from:], required)
}

// Flush invalidates the instruction in stage id and in every stage before it.
// Stages after id are left untouched.
func (p *Pipeline) Flush(id insts.Stage) {
	for i := int(id); i >= 0; i-- {
		p.invalidate(p.stages[i].inst)
	}
}

func (p *Pipeline) invalidate(inst *insts.Instruction) {
	if inst == nil || inst.Noop {
		return
	}
	inst.Invalidate()
	p.stats.Squashed++
}
