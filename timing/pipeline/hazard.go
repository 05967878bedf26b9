package pipeline

import "github.com/sarchlab/mipsim/insts"

// HazardUnit detects read-after-write hazards between an instruction and the
// older instructions downstream of it.
type HazardUnit struct {
	// forwarding lets a consumer proceed as soon as the producer's result is
	// forwardable. Without it the consumer waits until the producer leaves
	// the pipeline.
	forwarding bool
}

// NewHazardUnit creates a new hazard detection unit with forwarding enabled.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{forwarding: true}
}

// Producer walks stages nearest first and returns the index of the first one
// holding an instruction that writes one of required and cannot forward it
// from that stage yet. It returns -1 when there is no hazard.
func (h *HazardUnit) Producer(stages []*Stage, required []insts.Operand) int {
	if len(required) == 0 {
		return -1
	}

	for i, s := range stages {
		if s.Empty() || h.available(s) {
			continue
		}

		for _, op := range required {
			if s.inst.Produces(op) {
				return i
			}
		}
	}

	return -1
}

// IsDataHazard reports whether any of stages blocks one of required.
func (h *HazardUnit) IsDataHazard(stages []*Stage, required []insts.Operand) bool {
	return h.Producer(stages, required) >= 0
}

func (h *HazardUnit) available(s *Stage) bool {
	if !h.forwarding {
		return len(s.inst.Outputs) == 0
	}
	return s.inst.Forwardable(s.id)
}
