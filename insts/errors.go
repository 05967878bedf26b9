package insts

import "fmt"

// OperandArityError is returned when an instruction is built with the wrong
// number of operands.
type OperandArityError struct {
	Op   Op
	Want int
	Got  int
}

func (e *OperandArityError) Error() string {
	if e.Got < e.Want {
		return fmt.Sprintf("%s: too few operands: expected %d, got %d", e.Op, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: too many operands: expected %d, got %d", e.Op, e.Want, e.Got)
}

// UnsupportedAddressingModeError is returned when an operand's addressing mode
// is not legal for the instruction kind. Outputs must be register direct.
type UnsupportedAddressingModeError struct {
	Op      Op
	Operand Operand
	Output  bool
}

func (e *UnsupportedAddressingModeError) Error() string {
	if e.Output {
		return fmt.Sprintf("%s: output operand %s must be register direct, got %s",
			e.Op, e.Operand, e.Operand.Mode())
	}
	return fmt.Sprintf("%s: input operand %s uses unsupported addressing mode %s",
		e.Op, e.Operand, e.Operand.Mode())
}

// UnsupportedOperationError is returned when an operand is asked to do
// something its addressing mode cannot, such as writing to an immediate.
type UnsupportedOperationError struct {
	Operation string
	Operand   Operand
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("cannot %s %s operand %s", e.Operation, e.Operand.Mode(), e.Operand)
}

// AssemblyError locates a failure in the assembly source.
type AssemblyError struct {
	Line   int // 1-based line in the source
	Source string
	Err    error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *AssemblyError) Unwrap() error {
	return e.Err
}
