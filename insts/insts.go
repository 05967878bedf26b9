// Package insts provides the instruction set modeled by the pipeline simulator.
//
// This package implements the static side of a program and the per-stage
// behavior of every instruction kind. It supports:
//   - Arithmetic: DADD, SUB (DSUB) with register or immediate inputs
//   - Memory: LD, SD with register-indirect or displacement addressing
//   - Control: BNEZ with an absolute instruction index as target
//
// Usage:
//
//	code, _ := insts.AssembleSource("LD R2, 0(R1)\nDADD R4, R2, R3")
//	prog := insts.NewProgram(code)
//	inst := prog.Next(state) // fresh copy of the instruction at PC, tagged I1
//	sig, err := inst.Tick(insts.StageEX, state)
package insts
