package emu

import "github.com/sarchlab/mipsim/insts"

// CPU owns the register file and the memory. It is the state every operand
// resolves against.
type CPU struct {
	regFile *RegFile
	memory  *Memory
}

var _ insts.State = (*CPU)(nil)

// CPUOption is a functional option for configuring the CPU.
type CPUOption func(*cpuConfig)

type cpuConfig struct {
	numRegisters int
	maxAddress   int64
}

// WithNumRegisters sets how many general purpose registers are created.
func WithNumRegisters(n int) CPUOption {
	return func(c *cpuConfig) {
		c.numRegisters = n
	}
}

// WithMaxAddress sets the highest writable memory address.
func WithMaxAddress(addr int64) CPUOption {
	return func(c *cpuConfig) {
		c.maxAddress = addr
	}
}

// NewCPU creates a CPU with zeroed registers and empty memory.
func NewCPU(opts ...CPUOption) *CPU {
	cfg := cpuConfig{
		numRegisters: DefaultNumRegisters,
		maxAddress:   DefaultMaxAddress,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &CPU{
		regFile: NewRegFile(cfg.numRegisters),
		memory:  NewMemory(cfg.maxAddress),
	}
}

// RegFile returns the register file.
func (c *CPU) RegFile() *RegFile { return c.regFile }

// Memory returns the memory.
func (c *CPU) Memory() *Memory { return c.memory }

// ReadRegister implements insts.State.
func (c *CPU) ReadRegister(name string) int64 { return c.regFile.ReadReg(name) }

// WriteRegister implements insts.State.
func (c *CPU) WriteRegister(name string, value int64) { c.regFile.WriteReg(name, value) }

// ReadMemory implements insts.State.
func (c *CPU) ReadMemory(addr int64) int64 { return c.memory.Read(addr) }

// WriteMemory implements insts.State.
func (c *CPU) WriteMemory(addr int64, value int64) error { return c.memory.Write(addr, value) }

// PC implements insts.State.
func (c *CPU) PC() int64 { return c.regFile.PC() }

// SetPC implements insts.State.
func (c *CPU) SetPC(value int64) { c.regFile.SetPC(value) }
