// Package pipeline provides the in-order 8-stage pipeline model for
// cycle-accurate timing simulation.
package pipeline

import "github.com/sarchlab/mipsim/insts"

// Stage is one position in the fixed stage chain. It holds at most one
// in-flight instruction.
type Stage struct {
	id   insts.Stage
	inst *insts.Instruction

	// stalled is set when the stage could not take its predecessor's
	// instruction this cycle. The predecessor reads it as back-pressure.
	stalled bool

	// ticked is set when the held instruction performed this stage's work
	// this cycle.
	ticked bool
}

// ID returns the stage ordinal.
func (s *Stage) ID() insts.Stage {
	return s.id
}

// Instruction returns the held instruction, or nil.
func (s *Stage) Instruction() *insts.Instruction {
	return s.inst
}

// Stalled reports whether the stage held its input this cycle.
func (s *Stage) Stalled() bool {
	return s.stalled
}

// Ticked reports whether the held instruction executed in this stage this
// cycle.
func (s *Stage) Ticked() bool {
	return s.ticked
}

// Empty reports whether the stage holds nothing or a bubble.
func (s *Stage) Empty() bool {
	return s.inst == nil || s.inst.Noop
}

// Slot is a snapshot of one stage after a cycle.
type Slot struct {
	Stage insts.Stage
	Inst  *insts.Instruction

	// Stalled is true when Inst is present but did not execute this cycle.
	Stalled bool
}

// Bubble reports whether the slot holds an invalidated instruction.
func (s Slot) Bubble() bool {
	return s.Inst != nil && s.Inst.Noop
}
