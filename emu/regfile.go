// Package emu provides the architectural state of the simulated processor and
// a functional reference emulator.
package emu

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PCRegister is the reserved name of the program counter register.
const PCRegister = "PC"

// DefaultNumRegisters is the number of general purpose registers R0..R31.
const DefaultNumRegisters = 32

// RegFile represents the named register file.
// Registers that were never written read as 0.
type RegFile struct {
	regs map[string]int64
}

// NewRegFile creates a register file with R0..R(n-1) initialized to zero and
// the program counter set to 0.
func NewRegFile(numRegisters int) *RegFile {
	r := &RegFile{regs: make(map[string]int64, numRegisters+1)}
	for i := 0; i < numRegisters; i++ {
		r.regs[GPRName(i)] = 0
	}
	r.regs[PCRegister] = 0
	return r
}

// Has reports whether the register file holds a register called name.
func (r *RegFile) Has(name string) bool {
	_, ok := r.regs[name]
	return ok
}

// GPRName returns the name of general purpose register i, e.g. "R4".
func GPRName(i int) string {
	return fmt.Sprintf("R%d", i)
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(name string) int64 {
	return r.regs[name]
}

// WriteReg writes a value to a register, creating it if needed.
func (r *RegFile) WriteReg(name string, value int64) {
	r.regs[name] = value
}

// PC returns the program counter.
func (r *RegFile) PC() int64 {
	return r.regs[PCRegister]
}

// SetPC sets the program counter. It is an ordinary register write.
func (r *RegFile) SetPC(value int64) {
	r.regs[PCRegister] = value
}

// Names returns the register names, general purpose registers first in
// numeric order, then any other names alphabetically. The program counter is
// not included.
func (r *RegFile) Names() []string {
	names := make([]string, 0, len(r.regs))
	for name := range r.regs {
		if name != PCRegister {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		return registerLess(names[i], names[j])
	})

	return names
}

// Snapshot returns a copy of all registers, the program counter included.
func (r *RegFile) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(r.regs))
	for k, v := range r.regs {
		out[k] = v
	}
	return out
}

func registerLess(a, b string) bool {
	ai, aok := gprIndex(a)
	bi, bok := gprIndex(b)

	switch {
	case aok && bok:
		return ai < bi
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

func gprIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "R") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
