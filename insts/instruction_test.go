package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

func reg(name string) insts.Operand { return insts.RegisterDirect{Name: name} }

func imm(v int64) insts.Operand { return insts.Immediate{Value: v} }

func disp(off int64, base string) insts.Operand {
	return insts.Displacement{Offset: off, Base: base}
}

func ind(base string) insts.Operand { return insts.RegisterIndirect{Base: base} }

var _ = Describe("Instruction", func() {
	var cpu *emu.CPU

	BeforeEach(func() {
		cpu = emu.NewCPU()
	})

	Describe("New", func() {
		DescribeTable("should reject the wrong operand count",
			func(op insts.Op, operands []insts.Operand, want, got int) {
				_, err := insts.New(op, operands...)

				var arity *insts.OperandArityError
				Expect(errors.As(err, &arity)).To(BeTrue())
				Expect(arity.Want).To(Equal(want))
				Expect(arity.Got).To(Equal(got))
			},
			Entry("DADD too few", insts.OpDADD, []insts.Operand{reg("R1"), reg("R2")}, 3, 2),
			Entry("DADD too many", insts.OpDADD, []insts.Operand{reg("R1"), reg("R2"), reg("R3"), reg("R4")}, 3, 4),
			Entry("SUB too few", insts.OpSUB, []insts.Operand{reg("R1")}, 3, 1),
			Entry("LD too few", insts.OpLD, []insts.Operand{reg("R1")}, 2, 1),
			Entry("LD too many", insts.OpLD, []insts.Operand{reg("R1"), ind("R2"), ind("R3")}, 2, 3),
			Entry("SD too few", insts.OpSD, []insts.Operand{reg("R1")}, 2, 1),
			Entry("BNEZ too many", insts.OpBNEZ, []insts.Operand{reg("R1"), imm(1), imm(2)}, 2, 3),
			Entry("BNEZ none", insts.OpBNEZ, nil, 2, 0),
		)

		It("should describe the arity mismatch", func() {
			_, err := insts.New(insts.OpDADD, reg("R1"))
			Expect(err).To(MatchError("DADD: too few operands: expected 3, got 1"))

			_, err = insts.New(insts.OpSD, reg("R1"), ind("R2"), ind("R3"))
			Expect(err).To(MatchError("SD: too many operands: expected 2, got 3"))
		})

		DescribeTable("should reject unsupported input modes",
			func(op insts.Op, operands []insts.Operand) {
				_, err := insts.New(op, operands...)

				var mode *insts.UnsupportedAddressingModeError
				Expect(errors.As(err, &mode)).To(BeTrue())
				Expect(mode.Output).To(BeFalse())
			},
			Entry("DADD indirect", insts.OpDADD, []insts.Operand{reg("R1"), ind("R2"), reg("R3")}),
			Entry("SUB displacement", insts.OpSUB, []insts.Operand{reg("R1"), reg("R2"), disp(4, "R3")}),
			Entry("LD register", insts.OpLD, []insts.Operand{reg("R1"), reg("R2")}),
			Entry("LD immediate", insts.OpLD, []insts.Operand{reg("R1"), imm(4)}),
			Entry("SD immediate", insts.OpSD, []insts.Operand{reg("R1"), imm(2)}),
			Entry("BNEZ indirect", insts.OpBNEZ, []insts.Operand{ind("R1"), imm(2)}),
		)

		DescribeTable("should require register direct outputs",
			func(op insts.Op, operands []insts.Operand) {
				_, err := insts.New(op, operands...)

				var mode *insts.UnsupportedAddressingModeError
				Expect(errors.As(err, &mode)).To(BeTrue())
				Expect(mode.Output).To(BeTrue())
			},
			Entry("DADD immediate output", insts.OpDADD, []insts.Operand{imm(1), reg("R2"), reg("R3")}),
			Entry("SUB indirect output", insts.OpSUB, []insts.Operand{ind("R1"), reg("R2"), reg("R3")}),
			Entry("LD displacement output", insts.OpLD, []insts.Operand{disp(0, "R1"), ind("R2")}),
		)

		It("should accept every supported mode", func() {
			for _, inst := range []*insts.Instruction{
				insts.MustNew(insts.OpDADD, reg("R1"), reg("R2"), imm(3)),
				insts.MustNew(insts.OpSUB, reg("R1"), imm(2), reg("R3")),
				insts.MustNew(insts.OpLD, reg("R1"), ind("R2")),
				insts.MustNew(insts.OpLD, reg("R1"), disp(8, "R2")),
				insts.MustNew(insts.OpSD, reg("R1"), ind("R2")),
				insts.MustNew(insts.OpSD, reg("R1"), disp(8, "R2")),
				insts.MustNew(insts.OpSD, reg("R1"), reg("R2")),
				insts.MustNew(insts.OpBNEZ, reg("R1"), imm(2)),
				insts.MustNew(insts.OpBNEZ, reg("R1"), reg("R2")),
			} {
				for _, in := range inst.Inputs {
					Expect(inst.SupportedInputModes()).To(ContainElement(in.Mode()))
				}
			}
		})

		It("should split outputs from inputs", func() {
			inst := insts.MustNew(insts.OpDADD, reg("R4"), reg("R2"), reg("R3"))
			Expect(inst.Outputs).To(Equal([]insts.Operand{reg("R4")}))
			Expect(inst.Inputs).To(Equal([]insts.Operand{reg("R2"), reg("R3")}))
			Expect(inst.String()).To(Equal("DADD R4, R2, R3"))
		})

		It("should reject unknown kinds", func() {
			_, err := insts.New(insts.OpUnknown)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DADD and SUB", func() {
		It("should compute at EX only", func() {
			cpu.WriteRegister("R2", 60)
			cpu.WriteRegister("R3", 42)
			add := insts.MustNew(insts.OpDADD, reg("R4"), reg("R2"), reg("R3"))

			for _, stage := range insts.AllStages() {
				if stage == insts.StageEX {
					continue
				}
				sig, err := add.Tick(stage, cpu)
				Expect(err).NotTo(HaveOccurred())
				Expect(sig).To(Equal(insts.SignalNone))
			}
			Expect(cpu.ReadRegister("R4")).To(Equal(int64(0)))

			_, err := add.Tick(insts.StageEX, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R4")).To(Equal(int64(102)))
		})

		It("should subtract the second input from the first", func() {
			cpu.WriteRegister("R2", 10)
			sub := insts.MustNew(insts.OpSUB, reg("R1"), reg("R2"), imm(3))

			_, err := sub.Tick(insts.StageEX, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R1")).To(Equal(int64(7)))
		})

		It("should require both inputs at EX", func() {
			add := insts.MustNew(insts.OpDADD, reg("R4"), reg("R2"), reg("R3"))
			Expect(add.RequiredAt(insts.StageEX)).To(Equal([]insts.Operand{reg("R2"), reg("R3")}))
			Expect(add.RequiredAt(insts.StageID)).To(BeEmpty())
			Expect(add.RequiredAt(insts.StageMEM1)).To(BeEmpty())
		})

		It("should forward once past EX", func() {
			add := insts.MustNew(insts.OpDADD, reg("R4"), reg("R2"), reg("R3"))
			Expect(add.Forwardable(insts.StageID)).To(BeFalse())
			Expect(add.Forwardable(insts.StageEX)).To(BeFalse())
			Expect(add.Forwardable(insts.StageMEM1)).To(BeTrue())
			Expect(add.Forwardable(insts.StageWB)).To(BeTrue())
		})
	})

	Describe("LD", func() {
		It("should load at MEM2 and forward after it", func() {
			cpu.WriteRegister("R1", 16)
			Expect(cpu.WriteMemory(16, 60)).To(Succeed())
			ld := insts.MustNew(insts.OpLD, reg("R2"), disp(0, "R1"))

			_, err := ld.Tick(insts.StageMEM1, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R2")).To(Equal(int64(0)))

			_, err = ld.Tick(insts.StageMEM2, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R2")).To(Equal(int64(60)))

			Expect(ld.RequiredAt(insts.StageMEM2)).To(Equal([]insts.Operand{disp(0, "R1")}))
			Expect(ld.RequiredAt(insts.StageEX)).To(BeEmpty())
			Expect(ld.Forwardable(insts.StageMEM2)).To(BeFalse())
			Expect(ld.Forwardable(insts.StageMEM3)).To(BeTrue())
		})
	})

	Describe("SD", func() {
		It("should store the first input at the second at MEM2", func() {
			cpu.WriteRegister("R1", 16)
			cpu.WriteRegister("R4", 102)
			sd := insts.MustNew(insts.OpSD, reg("R4"), disp(0, "R1"))

			_, err := sd.Tick(insts.StageMEM2, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadMemory(16)).To(Equal(int64(102)))
		})

		It("should copy between registers in register direct mode", func() {
			cpu.WriteRegister("R4", 9)
			sd := insts.MustNew(insts.OpSD, reg("R4"), reg("R5"))

			_, err := sd.Tick(insts.StageMEM2, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R5")).To(Equal(int64(9)))
		})

		It("should always be forwardable", func() {
			sd := insts.MustNew(insts.OpSD, reg("R4"), disp(0, "R1"))
			for _, stage := range insts.AllStages() {
				Expect(sd.Forwardable(stage)).To(BeTrue())
			}
		})

		It("should report out of bounds writes", func() {
			cpu.WriteRegister("R1", 5000)
			sd := insts.MustNew(insts.OpSD, reg("R4"), ind("R1"))

			_, err := sd.Tick(insts.StageMEM2, cpu)
			var oob *emu.OutOfBoundsError
			Expect(errors.As(err, &oob)).To(BeTrue())
		})
	})

	Describe("BNEZ", func() {
		var bnez *insts.Instruction

		BeforeEach(func() {
			bnez = insts.MustNew(insts.OpBNEZ, reg("R4"), imm(5))
		})

		It("should latch the target at ID", func() {
			_, ok := bnez.BranchTarget()
			Expect(ok).To(BeFalse())

			_, err := bnez.Tick(insts.StageID, cpu)
			Expect(err).NotTo(HaveOccurred())

			target, ok := bnez.BranchTarget()
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal(int64(5)))
		})

		It("should redirect and flush at MEM1 when the condition is nonzero", func() {
			cpu.WriteRegister("R4", 102)
			cpu.SetPC(4)

			_, err := bnez.Tick(insts.StageID, cpu)
			Expect(err).NotTo(HaveOccurred())
			sig, err := bnez.Tick(insts.StageEX, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(sig.Has(insts.SignalFlush)).To(BeFalse())

			sig, err = bnez.Tick(insts.StageMEM1, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(sig.Has(insts.SignalFlush)).To(BeTrue())
			Expect(cpu.PC()).To(Equal(int64(5)))
		})

		It("should fall through when the condition is zero", func() {
			cpu.SetPC(4)

			_, _ = bnez.Tick(insts.StageID, cpu)
			sig, err := bnez.Tick(insts.StageMEM1, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(sig).To(Equal(insts.SignalNone))
			Expect(cpu.PC()).To(Equal(int64(4)))
		})

		It("should require the target at ID and the condition at MEM1", func() {
			Expect(bnez.RequiredAt(insts.StageID)).To(Equal([]insts.Operand{imm(5)}))
			Expect(bnez.RequiredAt(insts.StageMEM1)).To(Equal([]insts.Operand{reg("R4")}))
			Expect(bnez.RequiredAt(insts.StageEX)).To(BeEmpty())
			Expect(bnez.Forwardable(insts.StageIF1)).To(BeTrue())
		})

		It("should not share the latched target between copies", func() {
			_, _ = bnez.Tick(insts.StageID, cpu)

			fresh := bnez.Clone()
			_, ok := fresh.BranchTarget()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("lifecycle flags", func() {
		var add *insts.Instruction

		BeforeEach(func() {
			add = insts.MustNew(insts.OpDADD, reg("R4"), reg("R2"), reg("R3"))
		})

		It("should mark loading and unloading", func() {
			add.Stalled = true
			add.Load()
			Expect(add.Executing).To(BeTrue())
			Expect(add.Stalled).To(BeFalse())

			add.Unload()
			Expect(add.Executing).To(BeFalse())
		})

		It("should turn into a side-effect free bubble when invalidated", func() {
			cpu.WriteRegister("R2", 1)
			add.Invalidate()

			Expect(add.Noop).To(BeTrue())
			Expect(add.RequiredAt(insts.StageEX)).To(BeEmpty())
			Expect(add.Forwardable(insts.StageIF1)).To(BeTrue())

			_, err := add.Tick(insts.StageEX, cpu)
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.ReadRegister("R4")).To(Equal(int64(0)))
		})

		It("should clone with fresh flags", func() {
			add.ExecID = 3
			add.Load()
			add.Invalidate()

			c := add.Clone()
			Expect(c).NotTo(BeIdenticalTo(add))
			Expect(c.ExecID).To(BeZero())
			Expect(c.Executing).To(BeFalse())
			Expect(c.Noop).To(BeFalse())
			Expect(c.String()).To(Equal(add.String()))
		})

		It("should report what it produces", func() {
			Expect(add.Produces(reg("R4"))).To(BeTrue())
			Expect(add.Produces(disp(8, "R4"))).To(BeTrue())
			Expect(add.Produces(reg("R2"))).To(BeFalse())
		})
	})
})
