// Package config holds the simulator settings that can be stored in a JSON
// file and applied to the CPU and the core.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/timing/core"
)

// SimConfig holds the simulation limits and pipeline options.
type SimConfig struct {
	// MaxCycles caps the number of pipeline cycles of a run. Zero removes the
	// cap. Default: 1000.
	MaxCycles uint64 `json:"max_cycles"`

	// MaxMemoryAddress is the largest writable word address. Default: 992.
	MaxMemoryAddress int64 `json:"max_memory_address"`

	// NumRegisters is the number of general purpose registers R0..Rn-1.
	// Default: 32.
	NumRegisters int `json:"num_registers"`

	// Forwarding lets results reach dependent instructions before write
	// back. Default: true.
	Forwarding bool `json:"forwarding"`

	// FrequencyMHz is the core clock. It only scales simulated time.
	// Default: 1000.
	FrequencyMHz uint64 `json:"frequency_mhz"`
}

// DefaultSimConfig returns the default settings.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		MaxCycles:        core.DefaultMaxCycles,
		MaxMemoryAddress: emu.DefaultMaxAddress,
		NumRegisters:     emu.DefaultNumRegisters,
		Forwarding:       true,
		FrequencyMHz:     1000,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the settings describe a usable machine.
func (c *SimConfig) Validate() error {
	if c.MaxMemoryAddress < 0 {
		return fmt.Errorf("max_memory_address must be >= 0")
	}
	if c.NumRegisters <= 0 {
		return fmt.Errorf("num_registers must be > 0")
	}
	if c.FrequencyMHz == 0 {
		return fmt.Errorf("frequency_mhz must be > 0")
	}
	return nil
}

// Clone returns a copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	return &clone
}

// NewCPU creates a CPU sized by the config.
func (c *SimConfig) NewCPU() *emu.CPU {
	return emu.NewCPU(
		emu.WithNumRegisters(c.NumRegisters),
		emu.WithMaxAddress(c.MaxMemoryAddress),
	)
}

// Apply copies the core settings onto b.
func (c *SimConfig) Apply(b core.Builder) core.Builder {
	return b.
		WithMaxCycles(c.MaxCycles).
		WithForwarding(c.Forwarding).
		WithFreq(sim.Freq(c.FrequencyMHz) * sim.MHz)
}
