package benchmarks

import (
	"fmt"
	"strings"

	"github.com/sarchlab/mipsim/loader"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a single pipeline behavior.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUse(),
		storeThenLoad(),
		branchTaken(),
		countdownLoop(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick checks:
// a loop, a hazard-heavy chain and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		loadUse(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - independent adds, no hazards
func arithmeticSequential() Benchmark {
	var src strings.Builder
	for i := 0; i < 20; i++ {
		reg := i%5 + 1
		fmt.Fprintf(&src, "DADD R%d, R%d, #1\n", reg, reg)
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 adds cycling over 5 registers - measures pipeline throughput",
		Input:       loader.Input{Code: src.String()},
		Expected: map[string]int64{
			"R1": 4, "R2": 4, "R3": 4, "R4": 4, "R5": 4,
		},
	}
}

// 2. Dependency Chain - every add consumes the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent adds (R1 = R1 + 1) - measures forwarding",
		Input: loader.Input{
			Code: strings.Repeat("DADD R1, R1, #1\n", 20),
		},
		Expected: map[string]int64{"R1": 20},
	}
}

// 3. Load Use - each load is consumed by the next instruction
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "5 load-add pairs - measures load-use stalls",
		Input: loader.Input{
			Registers: map[string]int64{"R1": 16},
			Memory:    map[int64]int64{16: 5},
			Code:      strings.Repeat("LD R2, 0(R1)\nDADD R3, R3, R2\n", 5),
		},
		Expected: map[string]int64{"R2": 5, "R3": 25},
	}
}

// 4. Store Then Load - memory round trips through the same word
func storeThenLoad() Benchmark {
	var src strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&src, "SD R2, %d(R1)\n", i)
		fmt.Fprintf(&src, "LD R3, %d(R1)\n", i)
		src.WriteString("DADD R4, R4, R3\n")
	}

	return Benchmark{
		Name:        "store_then_load",
		Description: "4 store-load-add triples - measures memory ordering",
		Input: loader.Input{
			Registers: map[string]int64{"R1": 8, "R2": 7},
			Code:      src.String(),
		},
		Expected: map[string]int64{"R3": 7, "R4": 28},
	}
}

// 5. Branch Taken - every branch skips one instruction
func branchTaken() Benchmark {
	var src strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&src, "BNEZ R1, SKIP%d\n", i)
		src.WriteString("DADD R2, R2, #100\n")
		fmt.Fprintf(&src, "SKIP%d: DADD R3, R3, #1\n", i)
	}

	return Benchmark{
		Name:        "branch_taken",
		Description: "5 taken forward branches - measures flush cost",
		Input: loader.Input{
			Registers: map[string]int64{"R1": 1},
			Code:      src.String(),
		},
		Expected: map[string]int64{"R2": 0, "R3": 5},
	}
}

// 6. Countdown Loop - a backward branch taken 9 times
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "10 iterations of add-sub-branch - measures loop overhead",
		Input: loader.Input{
			Code: `
      DADD R1, R0, #10
LOOP: DADD R2, R2, #3
      SUB R1, R1, #1
      BNEZ R1, LOOP
`,
		},
		Expected: map[string]int64{"R1": 0, "R2": 30},
	}
}
