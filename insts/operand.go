package insts

import "fmt"

// State is the architectural state that operands resolve against.
// emu.CPU is the production implementation.
type State interface {
	ReadRegister(name string) int64
	WriteRegister(name string, value int64)
	ReadMemory(addr int64) int64
	WriteMemory(addr int64, value int64) error
	PC() int64
	SetPC(value int64)
}

// AddressingMode tells how an operand reaches its value.
type AddressingMode uint8

// Addressing modes.
const (
	ModeImmediate        AddressingMode = iota // #n
	ModeRegisterDirect                         // Rk
	ModeRegisterIndirect                       // (Rk)
	ModeDisplacement                           // n(Rk)
)

// String returns a lower-case name for the mode.
func (m AddressingMode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeRegisterDirect:
		return "register direct"
	case ModeRegisterIndirect:
		return "register indirect"
	case ModeDisplacement:
		return "displacement"
	default:
		return fmt.Sprintf("AddressingMode(%d)", uint8(m))
	}
}

// Operand is a resolved reference into CPU state.
type Operand interface {
	// Mode returns the addressing mode of the operand.
	Mode() AddressingMode

	// Register returns the name of the register the operand touches, or ""
	// for an immediate.
	Register() string

	// Read returns the operand value.
	Read(s State) int64

	// Write stores value at the location the operand refers to.
	Write(value int64, s State) error

	String() string
}

// SameLocation reports whether two operands touch the same register. The
// addressing mode and any offset are ignored. Immediates never alias.
func SameLocation(a, b Operand) bool {
	if a == nil || b == nil {
		return false
	}
	reg := a.Register()
	return reg != "" && reg == b.Register()
}

// Immediate is a constant operand.
type Immediate struct {
	Value int64
}

// Mode implements Operand.
func (o Immediate) Mode() AddressingMode { return ModeImmediate }

// Register implements Operand. Immediates reference no register.
func (o Immediate) Register() string { return "" }

// Read returns the constant.
func (o Immediate) Read(State) int64 { return o.Value }

// Write always fails.
func (o Immediate) Write(int64, State) error {
	return &UnsupportedOperationError{Operation: "write", Operand: o}
}

func (o Immediate) String() string { return fmt.Sprintf("#%d", o.Value) }

// RegisterDirect names a register holding the value.
type RegisterDirect struct {
	Name string
}

// Mode implements Operand.
func (o RegisterDirect) Mode() AddressingMode { return ModeRegisterDirect }

// Register implements Operand.
func (o RegisterDirect) Register() string { return o.Name }

// Read returns the register value.
func (o RegisterDirect) Read(s State) int64 { return s.ReadRegister(o.Name) }

// Write sets the register.
func (o RegisterDirect) Write(value int64, s State) error {
	s.WriteRegister(o.Name, value)
	return nil
}

func (o RegisterDirect) String() string { return o.Name }

// RegisterIndirect addresses memory at the value of a base register.
type RegisterIndirect struct {
	Base string
}

// Mode implements Operand.
func (o RegisterIndirect) Mode() AddressingMode { return ModeRegisterIndirect }

// Register implements Operand.
func (o RegisterIndirect) Register() string { return o.Base }

// EffectiveAddress returns the memory address the operand refers to.
func (o RegisterIndirect) EffectiveAddress(s State) int64 {
	return s.ReadRegister(o.Base)
}

// Read loads the word at the effective address.
func (o RegisterIndirect) Read(s State) int64 {
	return s.ReadMemory(o.EffectiveAddress(s))
}

// Write stores the word at the effective address.
func (o RegisterIndirect) Write(value int64, s State) error {
	return s.WriteMemory(o.EffectiveAddress(s), value)
}

func (o RegisterIndirect) String() string { return fmt.Sprintf("(%s)", o.Base) }

// Displacement addresses memory at a base register plus a constant offset.
type Displacement struct {
	Offset int64
	Base   string
}

// Mode implements Operand.
func (o Displacement) Mode() AddressingMode { return ModeDisplacement }

// Register implements Operand.
func (o Displacement) Register() string { return o.Base }

// EffectiveAddress returns base + offset.
func (o Displacement) EffectiveAddress(s State) int64 {
	return s.ReadRegister(o.Base) + o.Offset
}

// Read loads the word at the effective address.
func (o Displacement) Read(s State) int64 {
	return s.ReadMemory(o.EffectiveAddress(s))
}

// Write stores the word at the effective address.
func (o Displacement) Write(value int64, s State) error {
	return s.WriteMemory(o.EffectiveAddress(s), value)
}

func (o Displacement) String() string { return fmt.Sprintf("%d(%s)", o.Offset, o.Base) }
