package insts

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var mnemonics = map[string]Op{
	"DADD": OpDADD,
	"SUB":  OpSUB,
	"DSUB": OpSUB,
	"LD":   OpLD,
	"SD":   OpSD,
	"BNEZ": OpBNEZ,
}

var (
	immediateRe    = regexp.MustCompile(`^#(-?\d+)$`)
	registerRe     = regexp.MustCompile(`^[Rr](\d+)$`)
	indirectRe     = regexp.MustCompile(`^\(\s*([Rr]\d+)\s*\)$`)
	displacementRe = regexp.MustCompile(`^(-?\d+)\s*\(\s*([Rr]\d+)\s*\)$`)
	labelDefRe     = regexp.MustCompile(`^([A-Za-z_]\w*)\s*:`)
	identRe        = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// ErrUndefinedLabel is returned when an operand names a label that is never
// defined.
var ErrUndefinedLabel = errors.New("undefined label")

// ErrDuplicateLabel is returned when a label is defined twice.
var ErrDuplicateLabel = errors.New("duplicate label")

// ErrInvalidRegister is returned for a register written with leading zeros.
var ErrInvalidRegister = errors.New("invalid register")

// sourceLine is one instruction line after label removal.
type sourceLine struct {
	num    int
	source string
	text   string
}

// Preprocess removes label definitions and rewrites every label reference
// into an immediate holding the index of the labeled instruction. Blank lines
// and ';' comments are dropped. The result holds one normalized instruction
// per element, e.g. "BNEZ R4, #5".
func Preprocess(lines []string) ([]string, error) {
	src, err := preprocess(lines)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(src))
	for i, l := range src {
		out[i] = l.text
	}
	return out, nil
}

func preprocess(lines []string) ([]sourceLine, error) {
	labels := make(map[string]int)
	var src []sourceLine

	// Pass 1: collect label definitions by instruction index.
	for i, raw := range lines {
		text := strings.TrimSpace(stripComment(raw))

		for {
			m := labelDefRe.FindStringSubmatch(text)
			if m == nil {
				break
			}
			if _, dup := labels[m[1]]; dup {
				return nil, &AssemblyError{
					Line: i + 1, Source: raw,
					Err: fmt.Errorf("%w %q", ErrDuplicateLabel, m[1]),
				}
			}
			labels[m[1]] = len(src)
			text = strings.TrimSpace(text[len(m[0]):])
		}

		if text == "" {
			continue
		}

		src = append(src, sourceLine{num: i + 1, source: raw, text: text})
	}

	// Pass 2: substitute references and normalize.
	for i := range src {
		mnemonic, operands := splitInstruction(src[i].text)

		for j, op := range operands {
			if !identRe.MatchString(op) || registerRe.MatchString(op) {
				continue
			}

			index, ok := labels[op]
			if !ok {
				return nil, &AssemblyError{
					Line: src[i].num, Source: src[i].source,
					Err: fmt.Errorf("%w %q", ErrUndefinedLabel, op),
				}
			}
			operands[j] = "#" + strconv.Itoa(index)
		}

		src[i].text = joinInstruction(mnemonic, operands)
	}

	return src, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// splitInstruction separates the mnemonic from its comma separated operands.
func splitInstruction(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	mnemonic := strings.ToUpper(fields[0])
	rest := strings.TrimSpace(text[strings.Index(text, fields[0])+len(fields[0]):])
	if rest == "" {
		return mnemonic, nil
	}

	return mnemonic, splitOperands(rest)
}

// splitOperands splits on commas outside parentheses.
func splitOperands(s string) []string {
	var result []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				result = append(result, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	result = append(result, strings.TrimSpace(s[start:]))
	return result
}

func joinInstruction(mnemonic string, operands []string) string {
	if len(operands) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(operands, ", ")
}

// ParseOperand parses one operand in assembler syntax: "#n" immediate, "Rk"
// register direct, "(Rk)" register indirect or "n(Rk)" displacement.
// Register names are upper-cased.
func ParseOperand(text string) (Operand, error) {
	text = strings.TrimSpace(text)

	if m := immediateRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid immediate %q: %w", text, err)
		}
		return Immediate{Value: v}, nil
	}

	if registerRe.MatchString(text) {
		name, err := registerName(text)
		if err != nil {
			return nil, err
		}
		return RegisterDirect{Name: name}, nil
	}

	if m := indirectRe.FindStringSubmatch(text); m != nil {
		base, err := registerName(m[1])
		if err != nil {
			return nil, err
		}
		return RegisterIndirect{Base: base}, nil
	}

	if m := displacementRe.FindStringSubmatch(text); m != nil {
		off, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid displacement %q: %w", text, err)
		}
		base, err := registerName(m[2])
		if err != nil {
			return nil, err
		}
		return Displacement{Offset: off, Base: base}, nil
	}

	return nil, fmt.Errorf("invalid operand syntax %q", text)
}

// registerName upper-cases a register token. The number must be written
// without leading zeros, so that every register has exactly one name.
func registerName(text string) (string, error) {
	digits := text[1:]
	if len(digits) > 1 && digits[0] == '0' {
		return "", fmt.Errorf("%w %q", ErrInvalidRegister, text)
	}
	return "R" + digits, nil
}

// Registers returns the names of the registers code reads or writes, in
// operand order and including address bases.
func Registers(code []*Instruction) []string {
	var names []string
	for _, inst := range code {
		for _, ops := range [][]Operand{inst.Outputs, inst.Inputs} {
			for _, op := range ops {
				if name := op.Register(); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// Assemble preprocesses and assembles lines into static instructions. Any
// failure is reported as an *AssemblyError naming the offending line.
func Assemble(lines []string) ([]*Instruction, error) {
	src, err := preprocess(lines)
	if err != nil {
		return nil, err
	}

	code := make([]*Instruction, 0, len(src))
	for _, l := range src {
		inst, err := assembleLine(l.text)
		if err != nil {
			return nil, &AssemblyError{Line: l.num, Source: l.source, Err: err}
		}
		code = append(code, inst)
	}

	return code, nil
}

// AssembleSource assembles a newline separated program.
func AssembleSource(source string) ([]*Instruction, error) {
	return Assemble(strings.Split(source, "\n"))
}

func assembleLine(text string) (*Instruction, error) {
	mnemonic, fields := splitInstruction(text)

	op, ok := mnemonics[mnemonic]
	if !ok {
		return nil, fmt.Errorf("unsupported instruction %q", mnemonic)
	}

	operands := make([]Operand, 0, len(fields))
	for _, f := range fields {
		operand, err := ParseOperand(f)
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	return New(op, operands...)
}
