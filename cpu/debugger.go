package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

var (
	addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	mneStyle  = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Debugger is a line-oriented REPL over a Cpu: it reads one command per
// line from in and writes disassembly and register state to out. There is
// no curses-style redraw; every command prints what changed and returns to
// the prompt, so the whole session is a scrollback a user can read back
// over ssh or pipe to a file.
type Debugger struct {
	Cpu *Cpu
	in  *bufio.Scanner
	out io.Writer
}

// NewDebugger wraps a Cpu for interactive stepping.
func NewDebugger(c *Cpu, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{Cpu: c, in: bufio.NewScanner(in), out: out}
}

// Run reads commands until EOF, "exit", "quit", "e", or "q". Recognised
// commands:
//
//	step, s [N]   execute N instructions (default 1)
//	regs          print register and flag state
//	peek ADDR     print the byte at ADDR (hex) without side effects
//	dump          spew.Fdump the whole Cpu struct, including its Bus
//	(empty line)  repeat the last command
//
// Run stops early, returning the error, if a Step reports a Decode or Bus
// error.
func (d *Debugger) Run() error {
	last := "step"
	for {
		fmt.Fprint(d.out, "> ")
		if !d.in.Scan() {
			return nil
		}
		line := strings.TrimSpace(d.in.Text())
		if line == "" {
			line = last
		} else {
			last = line
		}

		fields := strings.Fields(line)
		cmd := fields[0]

		switch cmd {
		case "exit", "quit", "e", "q":
			return nil

		case "step", "s":
			count := 1
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					count = n
				}
			}
			for i := 0; i < count; i++ {
				pc := d.Cpu.ProgramCounter
				op, _ := d.Cpu.fetch(pc, d.Cpu.Read(pc))
				n, err := d.Cpu.Step()
				if err != nil {
					fmt.Fprintln(d.out, errStyle.Render(err.Error()))
					return err
				}
				fmt.Fprintln(d.out, d.disassemble(pc, op, n))
			}
			fmt.Fprintln(d.out, d.regs())

		case "regs":
			fmt.Fprintln(d.out, d.regs())

		case "peek":
			if len(fields) < 2 {
				fmt.Fprintln(d.out, errStyle.Render("usage: peek ADDR"))
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 16)
			if err != nil {
				fmt.Fprintln(d.out, errStyle.Render(err.Error()))
				continue
			}
			v, err := d.Cpu.Bus.PeekCPU(uint16(addr))
			if err != nil {
				fmt.Fprintln(d.out, errStyle.Render(err.Error()))
				continue
			}
			fmt.Fprintf(d.out, "%04x: %02x\n", addr, v)

		case "dump":
			spew.Fdump(d.out, d.Cpu)

		default:
			fmt.Fprintln(d.out, errStyle.Render("unknown command: "+cmd))
		}
	}
}

// disassemble formats PPPP MNE operand, where operand follows the
// addressing mode's own convention.
func (d *Debugger) disassemble(pc uint16, op Opcode, cycles byte) string {
	addr := addrStyle.Render(fmt.Sprintf("%04x", pc))
	mne := mneStyle.Render(op.Name)
	operand := d.operand(op.AddressingMode)
	return fmt.Sprintf("%s  %s %-12s (%d cyc)", addr, mne, operand, cycles)
}

func (d *Debugger) operand(a AddressingMode) string {
	c := d.Cpu
	switch a {
	case Implied:
		return ""
	case Accumulator:
		return "A"
	case Immediate:
		return fmt.Sprintf("#$%02x", c.M)
	case ZeroPage:
		return fmt.Sprintf("$%02x", c.AbsAddress)
	case ZeroPageX:
		return fmt.Sprintf("$%02x,X", c.AbsAddress)
	case ZeroPageY:
		return fmt.Sprintf("$%02x,Y", c.AbsAddress)
	case IndirectX:
		return fmt.Sprintf("($%04x,X)", c.AbsAddress)
	case IndirectY:
		return fmt.Sprintf("($%04x),Y", c.AbsAddress)
	case Relative:
		return fmt.Sprintf("$%04x", c.AbsAddress)
	case Absolute:
		return fmt.Sprintf("$%04x", c.AbsAddress)
	case AbsoluteX:
		return fmt.Sprintf("$%04x,X", c.AbsAddress)
	case AbsoluteY:
		return fmt.Sprintf("$%04x,Y", c.AbsAddress)
	case Indirect:
		return fmt.Sprintf("($%04x)", c.AbsAddress)
	default:
		return ""
	}
}

func (d *Debugger) regs() string {
	var flags string
	for _, f := range []bool{
		d.Cpu.Flags.Negative,
		d.Cpu.Flags.Overflow,
		true, // bit 5 is not real storage, always reads 1
		d.Cpu.Flags.B,
		d.Cpu.Flags.Decimal,
		d.Cpu.Flags.DisableInterrupt,
		d.Cpu.Flags.Zero,
		d.Cpu.Flags.Carry,
	} {
		if f {
			flags += "1"
		} else {
			flags += "0"
		}
	}
	return fmt.Sprintf(
		"PC:%04x A:%02x X:%02x Y:%02x SP:%02x NV1BDIZC:%s cyc:%d",
		d.Cpu.ProgramCounter, d.Cpu.Accumulator, d.Cpu.X, d.Cpu.Y, d.Cpu.Stack,
		flags, d.Cpu.TotalCycles,
	)
}
