package insts

import (
	"fmt"
	"strings"
)

// Op identifies an instruction kind.
type Op uint8

// Instruction kinds.
const (
	OpUnknown Op = iota
	OpDADD
	OpSUB
	OpLD
	OpSD
	OpBNEZ
)

// String returns the assembler mnemonic.
func (op Op) String() string {
	switch op {
	case OpDADD:
		return "DADD"
	case OpSUB:
		return "SUB"
	case OpLD:
		return "LD"
	case OpSD:
		return "SD"
	case OpBNEZ:
		return "BNEZ"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Signal is a set of control requests an instruction raises toward the
// pipeline while ticking.
type Signal uint8

// SignalNone requests nothing.
const SignalNone Signal = 0

// Control signals.
const (
	// SignalFlush squashes every younger in-flight instruction.
	SignalFlush Signal = 1 << iota
)

// Has reports whether flag is raised.
func (s Signal) Has(flag Signal) bool {
	return s&flag != 0
}

// kindSpec is the static description of an instruction kind.
type kindSpec struct {
	numIn  int
	numOut int
	modes  []AddressingMode
	newSem func() semantics
}

var kinds = map[Op]kindSpec{
	OpDADD: {
		numIn: 2, numOut: 1,
		modes:  []AddressingMode{ModeImmediate, ModeRegisterDirect},
		newSem: func() semantics { return arith{} },
	},
	OpSUB: {
		numIn: 2, numOut: 1,
		modes:  []AddressingMode{ModeImmediate, ModeRegisterDirect},
		newSem: func() semantics { return arith{subtract: true} },
	},
	OpLD: {
		numIn: 1, numOut: 1,
		modes:  []AddressingMode{ModeRegisterIndirect, ModeDisplacement},
		newSem: func() semantics { return load{} },
	},
	OpSD: {
		numIn: 2, numOut: 0,
		modes:  []AddressingMode{ModeRegisterIndirect, ModeDisplacement, ModeRegisterDirect},
		newSem: func() semantics { return store{} },
	},
	OpBNEZ: {
		numIn: 2, numOut: 0,
		modes:  []AddressingMode{ModeRegisterDirect, ModeImmediate},
		newSem: func() semantics { return &branchNotZero{} },
	},
}

// Instruction is one operation together with its operands. The static copy is
// built once by the assembler; the program hands out a fresh Clone each time
// the instruction is fetched, so the flags below belong to one execution.
type Instruction struct {
	Op      Op
	Inputs  []Operand
	Outputs []Operand

	// ExecID is the unique execution id, assigned at fetch. Zero for static
	// instructions.
	ExecID uint64

	// Executing is set while the instruction is in flight.
	Executing bool

	// Stalled is set while a data hazard keeps the instruction from
	// entering its next stage.
	Stalled bool

	// Noop marks an invalidated instruction. It keeps its slot in the
	// pipeline but has no side effects.
	Noop bool

	sem semantics
}

// New builds an instruction. Operands are given in assembler order: outputs
// first, then inputs (DADD R4, R2, R3 writes R4).
func New(op Op, operands ...Operand) (*Instruction, error) {
	spec, ok := kinds[op]
	if !ok {
		return nil, fmt.Errorf("unknown instruction kind %s", op)
	}

	want := spec.numIn + spec.numOut
	if len(operands) != want {
		return nil, &OperandArityError{Op: op, Want: want, Got: len(operands)}
	}

	inst := &Instruction{
		Op:      op,
		Outputs: append([]Operand(nil), operands[:spec.numOut]...),
		Inputs:  append([]Operand(nil), operands[spec.numOut:]...),
		sem:     spec.newSem(),
	}

	if err := inst.validate(spec); err != nil {
		return nil, err
	}

	return inst, nil
}

// MustNew is like New but panics on error. Intended for tests and built-in
// programs.
func MustNew(op Op, operands ...Operand) *Instruction {
	inst, err := New(op, operands...)
	if err != nil {
		panic(err)
	}
	return inst
}

func (i *Instruction) validate(spec kindSpec) error {
	for _, in := range i.Inputs {
		if !containsMode(spec.modes, in.Mode()) {
			return &UnsupportedAddressingModeError{Op: i.Op, Operand: in}
		}
	}

	for _, out := range i.Outputs {
		if out.Mode() != ModeRegisterDirect {
			return &UnsupportedAddressingModeError{Op: i.Op, Operand: out, Output: true}
		}
	}

	return nil
}

func containsMode(modes []AddressingMode, m AddressingMode) bool {
	for _, mode := range modes {
		if mode == m {
			return true
		}
	}
	return false
}

// SupportedInputModes returns the addressing modes legal for inputs.
func (i *Instruction) SupportedInputModes() []AddressingMode {
	return append([]AddressingMode(nil), kinds[i.Op].modes...)
}

// RequiredAt returns the operands the instruction reads while it occupies
// stage. A noop requires nothing.
func (i *Instruction) RequiredAt(stage Stage) []Operand {
	if i.Noop {
		return nil
	}
	return i.sem.requiredAt(i, stage)
}

// Forwardable reports whether the instruction's outputs can be consumed by a
// dependent instruction while this one occupies stage.
func (i *Instruction) Forwardable(stage Stage) bool {
	if i.Noop {
		return true
	}
	return i.sem.forwardable(stage)
}

// Produces reports whether one of the outputs touches the same register as op.
func (i *Instruction) Produces(op Operand) bool {
	for _, out := range i.Outputs {
		if SameLocation(out, op) {
			return true
		}
	}
	return false
}

// Tick performs the instruction's work for stage.
func (i *Instruction) Tick(stage Stage, s State) (Signal, error) {
	if i.Noop {
		return SignalNone, nil
	}
	return i.sem.tick(i, stage, s)
}

// Load marks the instruction as entering the pipeline.
func (i *Instruction) Load() {
	i.Executing = true
	i.Stalled = false
	i.Noop = false
}

// Unload marks the instruction as leaving the pipeline.
func (i *Instruction) Unload() {
	i.Executing = false
	i.Stalled = false
	i.Noop = false
}

// Invalidate turns the instruction into a bubble.
func (i *Instruction) Invalidate() {
	i.Noop = true
}

// Clone returns a fresh copy with cleared flags and no execution id. Operands
// are immutable and shared.
func (i *Instruction) Clone() *Instruction {
	return &Instruction{
		Op:      i.Op,
		Inputs:  i.Inputs,
		Outputs: i.Outputs,
		sem:     i.sem.clone(),
	}
}

// Label returns the trace name of the execution, e.g. "I3".
func (i *Instruction) Label() string {
	return fmt.Sprintf("I%d", i.ExecID)
}

// String renders the instruction in assembler syntax.
func (i *Instruction) String() string {
	parts := make([]string, 0, len(i.Outputs)+len(i.Inputs))
	for _, op := range i.Outputs {
		parts = append(parts, op.String())
	}
	for _, op := range i.Inputs {
		parts = append(parts, op.String())
	}
	return i.Op.String() + " " + strings.Join(parts, ", ")
}
