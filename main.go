// Package main provides the entry point for MIPSim.
// MIPSim is a cycle-accurate simulator of an 8-stage in-order MIPS pipeline
// built on Akita.
//
// For the full CLI, use: go run ./cmd/mipsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("MIPSim - 8-stage MIPS Pipeline Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: mipsim [options] <input> <output>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config         Path to simulator configuration JSON file")
	fmt.Println("  -max-cycles     Cycle cap")
	fmt.Println("  -no-forwarding  Disable result forwarding")
	fmt.Println("  -log            Write a JSON trace log")
	fmt.Println("  -functional     Run the sequential emulator (no pipeline overlap)")
	fmt.Println("  -i              Prompt for more runs until 'exit'")
	fmt.Println("  -v              Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsim' instead.")
	}
}
