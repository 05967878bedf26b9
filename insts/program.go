package insts

// Program is the instruction sequencer. It hands out fresh copies of the
// static instructions in program counter order and owns the execution id
// counter.
type Program struct {
	code     []*Instruction
	nextID   uint64
	issued   uint64
	finished bool
}

// NewProgram creates a sequencer over code. Execution ids restart at 1.
func NewProgram(code []*Instruction) *Program {
	return &Program{
		code:   code,
		nextID: 1,
	}
}

// Len returns the number of static instructions.
func (p *Program) Len() int {
	return len(p.code)
}

// At returns the static instruction at index, or nil when out of range.
func (p *Program) At(index int) *Instruction {
	if index < 0 || index >= len(p.code) {
		return nil
	}
	return p.code[index]
}

// Next fetches the instruction at the program counter. When the counter is
// outside the program, the program is marked finished and nil is returned.
// Otherwise the counter advances by one and a fresh copy is returned, tagged
// with the next execution id.
func (p *Program) Next(s State) *Instruction {
	pc := s.PC()
	if pc < 0 || pc >= int64(len(p.code)) {
		p.finished = true
		return nil
	}

	p.finished = false
	s.SetPC(pc + 1)

	inst := p.code[pc].Clone()
	inst.ExecID = p.nextID
	p.nextID++
	p.issued++

	return inst
}

// Finished reports whether the last fetch ran past the end of the program.
// A taken branch back into range resumes fetching.
func (p *Program) Finished() bool {
	return p.finished
}

// Issued returns the number of instructions fetched so far.
func (p *Program) Issued() uint64 {
	return p.issued
}
