package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/mipsim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true once the program counter ran past the last instruction.
	Exited bool

	// Inst is the instruction executed by this step, nil when Exited.
	Inst *insts.Instruction

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes a program one instruction at a time, with no overlap
// between instructions. Every stage behavior of an instruction runs before the
// next one is fetched.
//
// The pipeline only guards read-after-write dependencies. A younger
// instruction that writes a register in EX can overwrite it before an older
// store or load reads it in MEM2, so the two models agree only on programs
// free of such write-after-read races.
type Emulator struct {
	cpu     *CPU
	program *insts.Program

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a functional emulator over cpu and program.
func NewEmulator(cpu *CPU, program *insts.Program, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		cpu:     cpu,
		program: program,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CPU returns the emulated state.
func (e *Emulator) CPU() *CPU {
	return e.cpu
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// ErrMaxInstructions is returned once the instruction limit is hit.
var ErrMaxInstructions = errors.New("max instructions reached")

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: ErrMaxInstructions,
		}
	}

	inst := e.program.Next(e.cpu)
	if inst == nil {
		return StepResult{Exited: true}
	}

	inst.Load()
	for _, stage := range insts.AllStages() {
		if _, err := inst.Tick(stage, e.cpu); err != nil {
			return StepResult{
				Inst: inst,
				Err:  fmt.Errorf("%s %s at %s: %w", inst.Label(), inst, stage, err),
			}
		}
	}
	inst.Unload()

	e.instructionCount++

	return StepResult{Inst: inst}
}

// Run executes instructions until the program ends or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Exited {
			return nil
		}
		if result.Err != nil {
			return result.Err
		}
	}
}
