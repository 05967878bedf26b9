package emu

import (
	"fmt"
	"sort"
)

// DefaultMaxAddress is the highest writable word address.
const DefaultMaxAddress int64 = 992

// OutOfBoundsError is returned when a write targets an address outside
// [0, Max].
type OutOfBoundsError struct {
	Addr int64
	Max  int64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("memory write to invalid address %d (valid range 0..%d)", e.Addr, e.Max)
}

// Memory is a sparse word-addressed memory. Unwritten addresses read as 0.
type Memory struct {
	words   map[int64]int64
	maxAddr int64
}

// NewMemory creates an empty memory accepting writes up to maxAddr.
func NewMemory(maxAddr int64) *Memory {
	return &Memory{
		words:   make(map[int64]int64),
		maxAddr: maxAddr,
	}
}

// MaxAddress returns the highest writable address.
func (m *Memory) MaxAddress() int64 {
	return m.maxAddr
}

// Read returns the word at addr.
func (m *Memory) Read(addr int64) int64 {
	return m.words[addr]
}

// Write stores value at addr.
func (m *Memory) Write(addr int64, value int64) error {
	if addr < 0 || addr > m.maxAddr {
		return &OutOfBoundsError{Addr: addr, Max: m.maxAddr}
	}
	m.words[addr] = value
	return nil
}

// Addresses returns every address that was ever written, in ascending order.
func (m *Memory) Addresses() []int64 {
	addrs := make([]int64, 0, len(m.words))
	for a := range m.words {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Snapshot returns a copy of every written word.
func (m *Memory) Snapshot() map[int64]int64 {
	out := make(map[int64]int64, len(m.words))
	for k, v := range m.words {
		out[k] = v
	}
	return out
}
