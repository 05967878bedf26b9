package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/timing/config"
	"github.com/sarchlab/mipsim/timing/core"
	"github.com/sarchlab/mipsim/trace"
)

const sampleInput = `
[registers]
   R1=16
   R3=42
   R5=8

[memory]
   8 = 40
   16 = 60

[code]
   code = """
         LD R2, 0(R1)
         DADD R4, R2, R3
         SD R4, 0(R1)
         BNEZ R4, NEXT
         DADD R2, R1, #8
   NEXT: DADD R1, R1, R3
"""
`

var _ = Describe("mipsim", func() {
	var (
		tempDir string
		stdout  *bytes.Buffer
		opts    options
	)

	write := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	read := func(path string) []string {
		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "mipsim-test")
		Expect(err).NotTo(HaveOccurred())

		stdout = &bytes.Buffer{}
		opts = options{
			config: config.DefaultSimConfig(),
			stdout: stdout,
		}
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("simulate", func() {
		It("should write the trace and the final state", func() {
			out := filepath.Join(tempDir, "out.txt")

			status, err := simulate(opts, write("in.toml", sampleInput), out)

			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(core.StatusDrained))

			lines := read(out)
			Expect(lines[0]).To(Equal("c#1 I1-IF1"))
			Expect(lines[1]).To(Equal("c#2 I1-IF2 I2-IF1"))
			Expect(lines[16]).To(HavePrefix("c#17 "))
			Expect(lines[17]).To(Equal("REGISTERS"))
			Expect(lines).To(ContainElements("R1 58", "R4 102", "R5 8", "MEMORY", "8 40", "16 102"))
			Expect(lines[len(lines)-1]).To(Equal("16 102"))
			Expect(stdout.Len()).To(BeZero())
		})

		It("should only write the final state in functional mode", func() {
			out := filepath.Join(tempDir, "out.txt")
			opts.functional = true

			status, err := simulate(opts, write("in.toml", sampleInput), out)

			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(core.StatusDrained))

			lines := read(out)
			Expect(lines[0]).To(Equal("REGISTERS"))
			Expect(lines).To(ContainElements("R4 102", "16 102"))
		})

		It("should print tables when verbose", func() {
			opts.verbose = true

			_, err := simulate(opts, write("in.toml", sampleInput), filepath.Join(tempDir, "out.txt"))

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("Registers after 17 cycles"))
			Expect(stdout.String()).To(ContainSubstring("Status: drained"))
		})

		It("should report the cycle cap", func() {
			opts.config.MaxCycles = 5

			status, err := simulate(opts, write("in.toml", sampleInput), filepath.Join(tempDir, "out.txt"))

			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(core.StatusCycleCapReached))
			Expect(exitCode(status, err)).To(Equal(2))
		})

		It("should still write the partial trace on a fatal error", func() {
			out := filepath.Join(tempDir, "out.txt")
			in := write("in.yaml", "registers:\n  R1: 5000\ncode: SD R1, 0(R1)\n")

			status, err := simulate(opts, in, out)

			Expect(err).To(MatchError(ContainSubstring("memory write to invalid address 5000")))
			Expect(status).To(Equal(core.StatusFailed))
			Expect(exitCode(status, err)).To(Equal(1))

			lines := read(out)
			Expect(lines[0]).To(Equal("c#1 I1-IF1"))
			Expect(lines[5]).To(Equal("c#6 I1-MEM2"))
			Expect(lines).To(ContainElement("R1 5000"))
		})

		It("should log the run summary through slog", func() {
			buf := &bytes.Buffer{}
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(buf,
				&slog.HandlerOptions{Level: trace.LevelTrace})))
			DeferCleanup(func() { slog.SetDefault(prev) })
			opts.slog = true

			in := write("in.toml", sampleInput)
			_, err := simulate(opts, in, filepath.Join(tempDir, "out.txt"))
			Expect(err).NotTo(HaveOccurred())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			var last map[string]any
			Expect(json.Unmarshal([]byte(lines[len(lines)-1]), &last)).To(Succeed())
			Expect(last["msg"]).To(Equal("Run"))
			Expect(last["input"]).To(Equal(in))
			Expect(last["status"]).To(Equal("drained"))
			Expect(lines).To(HaveLen(19))
		})

		It("should fail on a missing input", func() {
			_, err := simulate(opts, filepath.Join(tempDir, "none.toml"), filepath.Join(tempDir, "out.txt"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("parseCommand", func() {
		It("should accept an input/output pair", func() {
			in, out, err := parseCommand("  a.toml   b.txt ")
			Expect(err).NotTo(HaveOccurred())
			Expect(in).To(Equal("a.toml"))
			Expect(out).To(Equal("b.txt"))
		})

		It("should accept the simulate subcommand", func() {
			in, out, err := parseCommand("simulate a.toml b.txt")
			Expect(err).NotTo(HaveOccurred())
			Expect(in).To(Equal("a.toml"))
			Expect(out).To(Equal("b.txt"))
		})

		It("should recognize exit", func() {
			_, _, err := parseCommand("exit")
			Expect(errors.Is(err, errExit)).To(BeTrue())
		})

		It("should reject anything else", func() {
			_, _, err := parseCommand("a.toml")
			Expect(err).To(MatchError(ContainSubstring("expected <input> <output>")))
		})
	})

	Describe("exitCode", func() {
		It("should be zero for a drained run", func() {
			Expect(exitCode(core.StatusDrained, nil)).To(Equal(0))
		})
	})
})
