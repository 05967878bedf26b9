// Package trace records what the pipeline did each cycle and the final
// architectural state, and writes it out in text, slog or table form.
package trace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/mipsim/insts"
)

// StallLabel replaces the stage name of an instruction that did not execute
// in its cycle.
const StallLabel = "stall"

// Entry is one live instruction in a cycle.
type Entry struct {
	ExecID  uint64
	Stage   insts.Stage
	Stalled bool
}

// Label returns the stage name, or StallLabel.
func (e Entry) Label() string {
	if e.Stalled {
		return StallLabel
	}
	return e.Stage.String()
}

// String renders the entry as "I<id>-<stage|stall>".
func (e Entry) String() string {
	return fmt.Sprintf("I%d-%s", e.ExecID, e.Label())
}

// Bubble is an invalidated instruction still occupying a stage.
type Bubble struct {
	ExecID uint64
	Stage  insts.Stage
}

// String renders the bubble as "I<id>-noop@<stage>".
func (b Bubble) String() string {
	return fmt.Sprintf("I%d-noop@%s", b.ExecID, b.Stage)
}

// Record describes one cycle. Entries hold the live instructions and Bubbles
// the invalidated ones, both oldest first.
type Record struct {
	Cycle   uint64
	Entries []Entry
	Bubbles []Bubble
}

// Sort orders entries and bubbles by execution id.
func (r *Record) Sort() {
	sort.Slice(r.Entries, func(i, j int) bool { return r.Entries[i].ExecID < r.Entries[j].ExecID })
	sort.Slice(r.Bubbles, func(i, j int) bool { return r.Bubbles[i].ExecID < r.Bubbles[j].ExecID })
}

// Entry returns the entry of the execution with id, if present.
func (r Record) Entry(id uint64) (Entry, bool) {
	for _, e := range r.Entries {
		if e.ExecID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// String renders the cycle as "c#<n> I1-IF2 I2-IF1". Bubbles are not shown.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "c#%d", r.Cycle)
	for _, e := range r.Entries {
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	return b.String()
}

// RegisterValue is one register in the final state.
type RegisterValue struct {
	Name  string
	Value int64
}

// MemoryWord is one written memory word in the final state.
type MemoryWord struct {
	Addr  int64
	Value int64
}

// FinalState is the architectural state at the end of a run.
type FinalState struct {
	Cycles    uint64
	Registers []RegisterValue
	Memory    []MemoryWord
}

// Register returns the value of the named register, if present.
func (s FinalState) Register(name string) (int64, bool) {
	for _, r := range s.Registers {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

// Word returns the value stored at addr, if it was written.
func (s FinalState) Word(addr int64) (int64, bool) {
	for _, w := range s.Memory {
		if w.Addr == addr {
			return w.Value, true
		}
	}
	return 0, false
}

// Logger receives the trace of a run.
type Logger interface {
	// LogCycle is called once per simulated cycle.
	LogCycle(r Record)

	// LogFinalState is called once at the end of a run, including runs that
	// stopped on an error or at the cycle cap.
	LogFinalState(s FinalState)
}

// Recorder keeps the trace in memory.
type Recorder struct {
	records []Record
	final   *FinalState
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// LogCycle implements Logger.
func (r *Recorder) LogCycle(rec Record) {
	r.records = append(r.records, rec)
}

// LogFinalState implements Logger.
func (r *Recorder) LogFinalState(s FinalState) {
	r.final = &s
}

// Records returns the cycles recorded so far.
func (r *Recorder) Records() []Record {
	return r.records
}

// Final returns the final state, or nil before the run ended.
func (r *Recorder) Final() *FinalState {
	return r.final
}

// MultiLogger fans the trace out to several loggers in order.
type MultiLogger []Logger

// LogCycle implements Logger.
func (m MultiLogger) LogCycle(r Record) {
	for _, l := range m {
		l.LogCycle(r)
	}
}

// LogFinalState implements Logger.
func (m MultiLogger) LogFinalState(s FinalState) {
	for _, l := range m {
		l.LogFinalState(s)
	}
}
