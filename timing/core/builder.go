package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
	"github.com/sarchlab/mipsim/timing/pipeline"
	"github.com/sarchlab/mipsim/trace"
)

// DefaultMaxCycles is the cycle cap used when none is configured.
const DefaultMaxCycles uint64 = 1000

// Builder can create new cores.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	logger     trace.Logger
	maxCycles  uint64
	forwarding bool
}

// NewBuilder returns a builder with a serial engine at 1 GHz, forwarding
// enabled and the default cycle cap.
func NewBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		maxCycles:  DefaultMaxCycles,
		forwarding: true,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLogger sets the trace logger. Without one the trace is only kept in
// the Result.
func (b Builder) WithLogger(logger trace.Logger) Builder {
	b.logger = logger
	return b
}

// WithMaxCycles sets the cycle cap. Zero removes the cap.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// WithForwarding enables or disables result forwarding in the pipeline.
func (b Builder) WithForwarding(enabled bool) Builder {
	b.forwarding = enabled
	return b
}

// Build creates a core that runs program against cpu.
func (b Builder) Build(name string, cpu *emu.CPU, program *insts.Program) *Core {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	c := &Core{
		cpu:       cpu,
		logger:    b.logger,
		maxCycles: b.maxCycles,
		pipeline: pipeline.NewPipeline(cpu, program,
			pipeline.WithForwarding(b.forwarding)),
	}

	c.TickingComponent = sim.NewTickingComponent(name, engine, b.freq, c)

	return c
}
