// Package loader reads simulation inputs: the initial register values, the
// initial memory words and the assembly source of the program.
//
// Two formats are accepted, chosen by file extension. TOML files use the
// layout
//
//	[registers]
//	   R1 = 16
//	[memory]
//	   16 = 60
//	[code]
//	   code = """
//	      LD R2, 0(R1)
//	   """
//
// and YAML files (.yaml, .yml) use top level keys registers, memory and code.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/config"
)

// Input is a parsed simulation input.
type Input struct {
	// Registers maps register names to their initial values. Registers not
	// listed start at zero.
	Registers map[string]int64
	// Memory maps word addresses to their initial values.
	Memory map[int64]int64
	// Code is the assembly source.
	Code string
}

type tomlInput struct {
	Registers map[string]int64 `toml:"registers"`
	Memory    map[string]int64 `toml:"memory"`
	Code      struct {
		Code string `toml:"code"`
	} `toml:"code"`
}

type yamlInput struct {
	Registers map[string]int64 `yaml:"registers"`
	Memory    map[int64]int64  `yaml:"memory"`
	Code      string           `yaml:"code"`
}

// Load reads an input file. The format is picked from the extension; any
// extension other than .yaml and .yml is read as TOML.
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseTOML(data)
	}
}

// ParseTOML parses an input in TOML form.
func ParseTOML(data []byte) (*Input, error) {
	var raw tomlInput
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML input: %w", err)
	}

	in := &Input{
		Registers: raw.Registers,
		Memory:    make(map[int64]int64, len(raw.Memory)),
		Code:      raw.Code.Code,
	}

	for key, value := range raw.Memory {
		addr, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid memory address %q: %w", key, err)
		}
		in.Memory[addr] = value
	}

	return in, nil
}

// ParseYAML parses an input in YAML form.
func ParseYAML(data []byte) (*Input, error) {
	var raw yamlInput
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML input: %w", err)
	}

	return &Input{
		Registers: raw.Registers,
		Memory:    raw.Memory,
		Code:      raw.Code,
	}, nil
}

// Build creates the CPU described by cfg, applies the initial state and
// assembles the program.
func (in *Input) Build(cfg *config.SimConfig) (*emu.CPU, *insts.Program, error) {
	if cfg == nil {
		cfg = config.DefaultSimConfig()
	}

	cpu := cfg.NewCPU()

	names := make([]string, 0, len(in.Registers))
	for name := range in.Registers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reg := strings.ToUpper(strings.TrimSpace(name))
		if !cpu.RegFile().Has(reg) || reg == emu.PCRegister {
			return nil, nil, fmt.Errorf("unknown register %q", name)
		}
		cpu.WriteRegister(reg, in.Registers[name])
	}

	addrs := make([]int64, 0, len(in.Memory))
	for addr := range in.Memory {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		if err := cpu.WriteMemory(addr, in.Memory[addr]); err != nil {
			return nil, nil, fmt.Errorf("invalid initial memory: %w", err)
		}
	}

	code, err := insts.AssembleSource(in.Code)
	if err != nil {
		return nil, nil, err
	}

	for _, reg := range insts.Registers(code) {
		if !cpu.RegFile().Has(reg) {
			return nil, nil, fmt.Errorf("unknown register %q in program", reg)
		}
	}

	return cpu, insts.NewProgram(code), nil
}
