package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
)

var _ = Describe("CPU", func() {
	var cpu *emu.CPU

	BeforeEach(func() {
		cpu = emu.NewCPU()
	})

	Describe("registers", func() {
		It("should create R0..R31 zeroed", func() {
			names := cpu.RegFile().Names()
			Expect(names).To(HaveLen(32))
			Expect(names[0]).To(Equal("R0"))
			Expect(names[2]).To(Equal("R2"))
			Expect(names[31]).To(Equal("R31"))
			Expect(cpu.ReadRegister("R17")).To(Equal(int64(0)))
		})

		It("should read back written values", func() {
			cpu.WriteRegister("R4", -12)
			Expect(cpu.ReadRegister("R4")).To(Equal(int64(-12)))
		})

		It("should read unknown registers as zero", func() {
			Expect(cpu.ReadRegister("R99")).To(Equal(int64(0)))
		})

		It("should honor the register count option", func() {
			cpu = emu.NewCPU(emu.WithNumRegisters(4))
			Expect(cpu.RegFile().Names()).To(Equal([]string{"R0", "R1", "R2", "R3"}))
		})

		It("should order extra names after the general purpose registers", func() {
			cpu = emu.NewCPU(emu.WithNumRegisters(2))
			cpu.WriteRegister("R10", 1)
			cpu.WriteRegister("HI", 2)
			Expect(cpu.RegFile().Names()).To(Equal([]string{"R0", "R1", "R10", "HI"}))
		})
	})

	Describe("program counter", func() {
		It("should start at zero", func() {
			Expect(cpu.PC()).To(Equal(int64(0)))
		})

		It("should be an ordinary register", func() {
			cpu.SetPC(7)
			Expect(cpu.ReadRegister(emu.PCRegister)).To(Equal(int64(7)))

			cpu.WriteRegister(emu.PCRegister, 3)
			Expect(cpu.PC()).To(Equal(int64(3)))
		})

		It("should be left out of Names but kept in Snapshot", func() {
			cpu.SetPC(5)
			Expect(cpu.RegFile().Names()).NotTo(ContainElement(emu.PCRegister))
			Expect(cpu.RegFile().Snapshot()).To(HaveKeyWithValue(emu.PCRegister, int64(5)))
		})
	})

	Describe("memory", func() {
		It("should read unwritten addresses as zero", func() {
			Expect(cpu.ReadMemory(128)).To(Equal(int64(0)))
		})

		It("should store words up to the maximum address", func() {
			Expect(cpu.WriteMemory(0, 1)).To(Succeed())
			Expect(cpu.WriteMemory(emu.DefaultMaxAddress, 2)).To(Succeed())
			Expect(cpu.ReadMemory(emu.DefaultMaxAddress)).To(Equal(int64(2)))
		})

		It("should reject writes beyond the maximum address", func() {
			err := cpu.WriteMemory(emu.DefaultMaxAddress+1, 2)

			var oob *emu.OutOfBoundsError
			Expect(errors.As(err, &oob)).To(BeTrue())
			Expect(oob.Addr).To(Equal(emu.DefaultMaxAddress + 1))
			Expect(oob.Max).To(Equal(emu.DefaultMaxAddress))
			Expect(cpu.Memory().Addresses()).To(BeEmpty())
		})

		It("should reject negative addresses", func() {
			cpu = emu.NewCPU(emu.WithMaxAddress(16))
			Expect(cpu.WriteMemory(-8, 1)).To(HaveOccurred())
			Expect(cpu.WriteMemory(24, 1)).To(HaveOccurred())
			Expect(cpu.WriteMemory(16, 1)).To(Succeed())
		})

		It("should list written addresses in order", func() {
			Expect(cpu.WriteMemory(16, 60)).To(Succeed())
			Expect(cpu.WriteMemory(8, 40)).To(Succeed())
			Expect(cpu.WriteMemory(16, 61)).To(Succeed())

			Expect(cpu.Memory().Addresses()).To(Equal([]int64{8, 16}))
			Expect(cpu.Memory().Snapshot()).To(Equal(map[int64]int64{8: 40, 16: 61}))
		})
	})
})
