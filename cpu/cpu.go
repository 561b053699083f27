// Package cpu implements the MOS Technology 6502 microprocessor, as used in
// the NES.

package cpu

import (
	"strconv"
	"strings"
	"time"

	"nesgo/mask"
	"nesgo/mem"
	"nesgo/neserr"
)

// https://www.nesdev.org/wiki/CPU#Frequencies
// https://www.nesdev.org/wiki/Cycle_reference_chart#Clock_rates

var (
	tick = 1e9 / 1789773 // cannot be inlined into time.Duration, even with cast
	Tick = time.Nanosecond * time.Duration(tick)
)

// The Cpu has no memory of its own (aside from a number of small registers
// which amount to about 7 bytes). Instead, the Cpu interfaces with a Bus that
// provides memory.
type Cpu struct {
	Bus *mem.Bus

	// https://problemkaputt.de/everynes.htm#cpuregistersandflags
	// https://www.nesdev.org/wiki/CPU_ALL#CPU_2
	// https://www.nesdev.org/wiki/Status_flags#Flags
	Flags Flags

	Accumulator byte // The Accumulator represents a byte value for immediate use, similar to a local variable
	X           byte
	Y           byte

	// Stack instructions (PHA, PLA, PHP, PLP, JSR, RTS, BRK, RTI) always
	// access the 01 page (0x0100-0x01ff). Stack holds the low byte of that
	// address.
	Stack byte

	// The ProgramCounter is a 2-byte (word) memory address that increments
	// (almost) continuously. The byte located at this address should
	// provide the CPU with an Opcode that specifies the next instruction
	// to execute.
	ProgramCounter uint16

	M           byte // after AddressingMode
	AbsAddress  uint16
	PageCrossed bool // set during decode; consumed once by the owning instruction

	// Cycles holds the cycle count consumed by the most recently executed
	// instruction, for introspection (the debugger reports it).
	Cycles byte

	// TotalCycles is the running total of cycles this Cpu has consumed.
	// Sprite DMA's 513/514-cycle stall depends on its parity.
	TotalCycles uint64

	opcodeAddr uint16 // PC at the start of the current Step, for Decode errors and branch page-cross checks
	err        error  // sticky bus error raised by Read/Write during the current Step
}

// Read reads one byte from the given addr via the Bus. A Bus error raised
// during a Step is latched and returned by that Step.
func (c *Cpu) Read(addr uint16) byte {
	v, err := c.Bus.CPURead(addr)
	if err != nil && c.err == nil {
		c.err = err
	}
	return v
}

// Write passes data to the Bus, which actually performs the write. A Bus
// error raised during a Step is latched and returned by that Step.
func (c *Cpu) Write(addr uint16, data byte) {
	if err := c.Bus.CPUWrite(addr, data); err != nil && c.err == nil {
		c.err = err
	}
}

func (c *Cpu) readWord(addr uint16) uint16 {
	lo := c.Read(addr)
	hi := c.Read(addr + 1)
	return mask.Word(hi, lo)
}

func (c *Cpu) push(v byte) {
	c.Write(0x0100|uint16(c.Stack), v)
	c.Stack--
}

func (c *Cpu) pop() byte {
	c.Stack++
	return c.Read(0x0100 | uint16(c.Stack))
}

func (c *Cpu) pushWord(w uint16) {
	hi, lo := mask.SplitWord(w)
	c.push(hi)
	c.push(lo)
}

func (c *Cpu) popWord() uint16 {
	lo := c.pop()
	hi := c.pop()
	return mask.Word(hi, lo)
}

func (c *Cpu) setZN(v byte) {
	c.Flags.Zero = v == 0
	c.Flags.Negative = v&0x80 > 0
}

// LoadProgram writes a whitespace-separated sequence of hex bytes directly
// into RAM starting at addr, for building small test programs.
func (c *Cpu) LoadProgram(program string, addr uint16) {
	for i, s := range strings.Fields(program) {
		b, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			panic(err)
		}
		c.Bus.RAM[(addr+uint16(i))&0x07FF] = byte(b)
	}
}

// An AddressingMode tells the Cpu where to access (look for) a given byte of
// memory. There are 13 possible modes.
type AddressingMode int

// https://problemkaputt.de/everynes.htm#cpumemoryaddressing
// https://www.nesdev.org/wiki/CPU_addressing_modes

const (
	Implied     AddressingMode = iota // does not increment ProgramCounter
	Accumulator                       // use Cpu.Accumulator

	Immediate // use the ProgramCounter itself
	ZeroPage  // 0x0000-0x00ff
	ZeroPageX
	ZeroPageY // LDX, STX

	IndirectX // rarely used
	IndirectY // 3 reads, may involve page crossing
	Relative  // 1 read (signed offset)

	Absolute
	AbsoluteX // may involve page crossing
	AbsoluteY // may involve page crossing

	Indirect // JMP only
)

func (c *Cpu) fetch(pc uint16, b byte) (Opcode, error) {
	oc, legal := Opcodes[b]
	if !legal {
		return Opcode{}, neserr.NewDecode(pc, b)
	}
	return oc, nil
}

// decode fetches a byte of data from memory, accounting for the addressing
// mode. c.ProgramCounter is incremented zero to two times.
//
// The retrieved byte is stored in c.M, so that it can be used by the
// following Instruction. c.PageCrossed is set when AbsoluteX, AbsoluteY, or
// IndirectY cross a page boundary, or when a Relative target lands on a
// different page than the instruction itself; the owning Instruction or the
// Step loop decides whether that costs an extra cycle.
func (c *Cpu) decode(a AddressingMode) {
	switch a {

	case Implied:
		return // no byte to fetch

	case Accumulator:
		c.M = c.Accumulator
		return

	case Immediate:
		c.AbsAddress = c.ProgramCounter
		c.ProgramCounter++

	case ZeroPage:
		c.AbsAddress = uint16(c.Read(c.ProgramCounter))
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff

	case ZeroPageX:
		c.AbsAddress = uint16(c.Read(c.ProgramCounter) + c.X)
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff

	case ZeroPageY:
		c.AbsAddress = uint16(c.Read(c.ProgramCounter) + c.Y)
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff

	case Relative:
		// The target is resolved now but the cycle cost is decided by the
		// branch instruction itself, since it only applies if taken.
		rel := c.Read(c.ProgramCounter)
		c.ProgramCounter++

		c.AbsAddress = c.ProgramCounter + uint16(rel)
		if rel&0x80 > 0 {
			c.AbsAddress -= 0x0100
		}
		c.PageCrossed = c.AbsAddress&0xff00 != c.opcodeAddr&0xff00
		return

	case Absolute:
		// The 6502 is little endian: the byte read first is the low byte.
		col := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

	case AbsoluteX:
		col := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.X)
		c.PageCrossed = c.AbsAddress&0xff00 != uint16(page)<<8

	case AbsoluteY:
		col := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.Y)
		c.PageCrossed = c.AbsAddress&0xff00 != uint16(page)<<8

	case IndirectX:
		// Only 1 PC increment, but 3 reads: the pointer is looked up
		// entirely within page 0, with X added before the indirection, so
		// no page cross is possible.
		ptr := c.Read(c.ProgramCounter)
		c.ProgramCounter++

		page := c.Read(uint16(ptr+c.X+1) & 0x00ff)
		col := c.Read(uint16(ptr+c.X) & 0x00ff)
		c.AbsAddress = mask.Word(page, col)

	case IndirectY:
		// Unlike IndirectX, the Y increment is applied after the
		// indirection, so a page cross is possible.
		ptr := c.Read(c.ProgramCounter)
		c.ProgramCounter++

		page := c.Read(uint16(ptr+1) & 0x00ff)
		col := c.Read(uint16(ptr) & 0x00ff)
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.Y)
		c.PageCrossed = c.AbsAddress&0xff00 != uint16(page)<<8

	case Indirect:
		// JMP only. The 2 bytes read are a pointer to an address, not data,
		// so a further 2 bytes are read from there. PC is still only
		// incremented twice.
		ptrCol := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		ptrPage := c.Read(c.ProgramCounter)
		ptr := mask.Word(ptrPage, ptrCol)
		c.ProgramCounter++

		realCol := c.Read(ptr)

		// The infamous 6502 page-wrap bug: if the pointer's low byte is
		// 0xff, the high byte of the target is read from the start of the
		// same page rather than the next one.
		// http://www.6502.org/tutorials/6502opcodes.html#JMP
		realPage := c.Read((ptr & 0xff00) | ((ptr + 1) & 0x00ff))

		c.AbsAddress = mask.Word(realPage, realCol)
		return
	}

	c.M = c.Read(c.AbsAddress)
}

// Step executes exactly one instruction: fetch, decode, execute. It returns
// the number of cycles consumed, including any sprite-DMA stall charged
// because of a write to 0x4014 since the previous Step, or a Decode/Bus
// error if the instruction could not complete.
func (c *Cpu) Step() (byte, error) {
	c.err = nil

	var stall uint16
	if c.Bus.ConsumeDMAPending() {
		stall = 513
		if c.TotalCycles%2 == 1 {
			stall = 514
		}
	}

	c.opcodeAddr = c.ProgramCounter
	b := c.Read(c.ProgramCounter)
	op, err := c.fetch(c.opcodeAddr, b)
	if err != nil {
		return 0, err
	}
	c.ProgramCounter++

	c.decode(op.AddressingMode)
	extra := op.Instruction(c)

	if c.err != nil {
		return 0, c.err
	}

	if op.Writeback {
		if op.AddressingMode == Accumulator {
			c.Accumulator = c.M
		} else {
			c.Write(c.AbsAddress, c.M)
		}
	}

	total := op.Cycles + extra
	if op.PageCrossOK && c.PageCrossed {
		total++
	}
	c.PageCrossed = false

	if c.err != nil {
		return 0, c.err
	}

	c.Cycles = total
	c.TotalCycles += uint64(total)

	return total + byte(stall), nil
}

// Run repeatedly steps the Cpu in real time (scaled by Tick) until an
// instruction returns an error.
func (c *Cpu) Run() error {
	for {
		n, err := c.Step()
		if err != nil {
			return err
		}
		time.Sleep(Tick * time.Duration(n))
	}
}

// fffa nmi
// fffc reset
// fffe irq

// http://www.6502.org/users/andre/65k/af65002/af65002int.html
// https://www.nesdev.org/wiki/CPU_interrupts

// NMI pushes PC and status, disables further IRQs, and jumps through the
// NMI vector at 0xFFFA. It is always serviced.
func (c *Cpu) NMI() {
	c.pushWord(c.ProgramCounter)
	status := c.Flags
	status.B = false
	c.push(status.AsByte())
	c.Flags.DisableInterrupt = true

	c.ProgramCounter = c.readWord(0xfffa)
	c.Cycles = 7
	c.TotalCycles += 7
}

// IRQ behaves like NMI but through the 0xFFFE vector, and is ignored while
// the I flag is set.
func (c *Cpu) IRQ() {
	if c.Flags.DisableInterrupt {
		return
	}

	c.pushWord(c.ProgramCounter)
	status := c.Flags
	status.B = false
	c.push(status.AsByte())
	c.Flags.DisableInterrupt = true

	c.ProgramCounter = c.readWord(0xfffe)
	c.Cycles = 7
	c.TotalCycles += 7
}

// Reset loads PC from the reset vector at 0xFFFC and puts the Cpu into its
// documented power-on state.
func (c *Cpu) Reset() {
	c.Accumulator = 0
	c.X = 0
	c.Y = 0
	c.Stack = 0xfd

	c.Flags = FlagsFromByte(0x24) // I set; bits 4/5 are not real storage

	c.ProgramCounter = c.readWord(0xfffc)

	c.M = 0
	c.AbsAddress = 0
	c.Cycles = 7
	c.TotalCycles += 7
}
