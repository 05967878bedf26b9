package insts

import "fmt"

// Stage is the ordinal position of a pipeline stage. Instructions use it to
// decide what to do while they occupy that stage.
type Stage uint8

// Stages of the 8-stage pipeline, in program flow order.
const (
	StageIF1 Stage = iota
	StageIF2
	StageID
	StageEX
	StageMEM1
	StageMEM2
	StageMEM3
	StageWB
)

// NumStages is the length of the stage chain.
const NumStages = 8

var stageNames = [NumStages]string{
	"IF1", "IF2", "ID", "EX", "MEM1", "MEM2", "MEM3", "WB",
}

// String returns the stage mnemonic, e.g. "MEM2".
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// AllStages returns every stage in program flow order.
func AllStages() []Stage {
	stages := make([]Stage, NumStages)
	for i := range stages {
		stages[i] = Stage(i)
	}
	return stages
}
