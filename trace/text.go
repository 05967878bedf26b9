package trace

import (
	"bufio"
	"fmt"
	"io"
)

// TextLogger writes the trace in the plain text output format:
//
//	c#1 I1-IF1
//	c#2 I1-IF2 I2-IF1
//	...
//	REGISTERS
//	R0 0
//	R1 58
//	...
//	MEMORY
//	16 102
//
// Write errors are sticky and reported by Flush.
type TextLogger struct {
	w   *bufio.Writer
	err error
}

// NewTextLogger creates a logger writing to w.
func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: bufio.NewWriter(w)}
}

// LogCycle implements Logger.
func (l *TextLogger) LogCycle(r Record) {
	l.printf("%s\n", r)
}

// LogFinalState implements Logger.
func (l *TextLogger) LogFinalState(s FinalState) {
	l.printf("REGISTERS\n")
	for _, r := range s.Registers {
		l.printf("%s %d\n", r.Name, r.Value)
	}

	l.printf("MEMORY\n")
	for _, m := range s.Memory {
		l.printf("%d %d\n", m.Addr, m.Value)
	}
}

// Flush writes buffered output and returns the first error seen.
func (l *TextLogger) Flush() error {
	if l.err != nil {
		return l.err
	}
	l.err = l.w.Flush()
	return l.err
}

func (l *TextLogger) printf(format string, args ...any) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, format, args...)
}
