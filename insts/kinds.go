package insts

// semantics is the per-kind behavior behind an Instruction.
type semantics interface {
	requiredAt(inst *Instruction, stage Stage) []Operand
	forwardable(stage Stage) bool
	tick(inst *Instruction, stage Stage, s State) (Signal, error)
	clone() semantics
}

// arith implements DADD and SUB. Both inputs are read at EX.
type arith struct {
	subtract bool
}

func (k arith) requiredAt(inst *Instruction, stage Stage) []Operand {
	if stage == StageEX {
		return inst.Inputs
	}
	return nil
}

func (k arith) forwardable(stage Stage) bool {
	return stage > StageEX
}

func (k arith) tick(inst *Instruction, stage Stage, s State) (Signal, error) {
	if stage != StageEX {
		return SignalNone, nil
	}

	a := inst.Inputs[0].Read(s)
	b := inst.Inputs[1].Read(s)

	result := a + b
	if k.subtract {
		result = a - b
	}

	return SignalNone, inst.Outputs[0].Write(result, s)
}

func (k arith) clone() semantics { return k }

// load implements LD. Memory is read at MEM2.
type load struct{}

func (load) requiredAt(inst *Instruction, stage Stage) []Operand {
	if stage == StageMEM2 {
		return inst.Inputs
	}
	return nil
}

func (load) forwardable(stage Stage) bool {
	return stage > StageMEM2
}

func (load) tick(inst *Instruction, stage Stage, s State) (Signal, error) {
	if stage != StageMEM2 {
		return SignalNone, nil
	}
	return SignalNone, inst.Outputs[0].Write(inst.Inputs[0].Read(s), s)
}

func (k load) clone() semantics { return k }

// store implements SD: the value of Inputs[0] is written to the location of
// Inputs[1] at MEM2. A store has no outputs, so nothing ever waits on it.
type store struct{}

func (store) requiredAt(inst *Instruction, stage Stage) []Operand {
	if stage == StageMEM2 {
		return inst.Inputs
	}
	return nil
}

func (store) forwardable(Stage) bool { return true }

func (store) tick(inst *Instruction, stage Stage, s State) (Signal, error) {
	if stage != StageMEM2 {
		return SignalNone, nil
	}
	return SignalNone, inst.Inputs[1].Write(inst.Inputs[0].Read(s), s)
}

func (k store) clone() semantics { return k }

// branchNotZero implements BNEZ. The target is latched at ID and the
// condition is evaluated at MEM1.
type branchNotZero struct {
	target  int64
	latched bool
}

func (b *branchNotZero) requiredAt(inst *Instruction, stage Stage) []Operand {
	switch stage {
	case StageID:
		return inst.Inputs[1:2]
	case StageMEM1:
		return inst.Inputs[0:1]
	default:
		return nil
	}
}

func (b *branchNotZero) forwardable(Stage) bool { return true }

func (b *branchNotZero) tick(inst *Instruction, stage Stage, s State) (Signal, error) {
	switch stage {
	case StageID:
		b.target = inst.Inputs[1].Read(s)
		b.latched = true
	case StageMEM1:
		if !b.latched {
			b.target = inst.Inputs[1].Read(s)
			b.latched = true
		}

		if inst.Inputs[0].Read(s) != 0 {
			s.SetPC(b.target)
			return SignalFlush, nil
		}
	}

	return SignalNone, nil
}

func (b *branchNotZero) clone() semantics { return &branchNotZero{} }

// BranchTarget returns the latched target of a BNEZ and whether it has been
// latched yet.
func (i *Instruction) BranchTarget() (int64, bool) {
	b, ok := i.sem.(*branchNotZero)
	if !ok {
		return 0, false
	}
	return b.target, b.latched
}
