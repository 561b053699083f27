// Package mem implements the Interconnect: the address-decoding bus that
// routes every CPU load and store to RAM, the PPU register file, or the
// cartridge, and performs sprite DMA synchronously on a write to 0x4014.
//
//	0x0000-0x1FFF  RAM, mirrored every 0x0800 bytes
//	0x2000-0x3FFF  PPU registers, mirrored every 8 bytes
//	0x4014         sprite DMA trigger (write-only)
//	0x4000-0x4017  APU/IO (not modeled; reads as 0)
//	0x4020-0x5FFF  expansion ROM (not modeled; bus error)
//	0x6000-0xFFFF  cartridge (SRAM, PRG) via the mapper
package mem

import (
	"nesgo/cartridge"
	"nesgo/mask"
	"nesgo/neserr"
	"nesgo/ppu"
)

const ramMask = 0x07FF

// Bus is the Interconnect: it owns RAM, the cartridge, and the PPU register
// interface for the emulator's lifetime. The CPU holds a reference to a Bus
// and never touches RAM, cartridge, or PPU bytes directly.
type Bus struct {
	RAM       [ramMask + 1]byte
	Cartridge *cartridge.Cartridge
	PPU       *ppu.Registers

	dmaPending bool
}

// New builds a Bus around an already-constructed cartridge.
func New(cart *cartridge.Cartridge) *Bus {
	return &Bus{
		Cartridge: cart,
		PPU:       ppu.New(),
	}
}

// CPURead reads one byte at a CPU-visible address, applying RAM and PPU
// register mirroring.
func (b *Bus) CPURead(addr uint16) (byte, error) {
	switch {
	case addr <= 0x1FFF:
		return b.RAM[addr&ramMask], nil
	case addr <= 0x3FFF:
		return b.PPU.Read(0x2000 + addr&0x0007), nil
	case addr == 0x4014:
		return 0, neserr.NewBus(addr, false, "PPU DMA register is write-only")
	case addr <= 0x4013, addr >= 0x4015 && addr <= 0x4017:
		return 0, nil
	case addr <= 0x5FFF:
		return 0, neserr.NewBus(addr, false, "expansion ROM is not implemented")
	default:
		return b.Cartridge.Read(addr)
	}
}

// CPURead16 reads a little-endian 16-bit word at addr and addr+1, with no
// special page-wrap handling; that quirk belongs to the CPU's Indirect
// addressing-mode resolver, not the bus.
func (b *Bus) CPURead16(addr uint16) (uint16, error) {
	lo, err := b.CPURead(addr)
	if err != nil {
		return 0, err
	}
	hi, err := b.CPURead(addr + 1)
	if err != nil {
		return 0, err
	}
	return mask.Word(hi, lo), nil
}

// CPUWrite writes one byte at a CPU-visible address. A write to 0x4014
// triggers sprite DMA: the written byte is a page index, and 256 bytes
// starting at that page are copied synchronously into PPU OAM starting at
// OAM index 0.
func (b *Bus) CPUWrite(addr uint16, x byte) error {
	switch {
	case addr <= 0x1FFF:
		b.RAM[addr&ramMask] = x
		return nil
	case addr <= 0x3FFF:
		b.PPU.Write(0x2000+addr&0x0007, x)
		return nil
	case addr == 0x4014:
		return b.spriteDMA(x)
	case addr <= 0x4013, addr >= 0x4015 && addr <= 0x4017:
		return nil
	case addr <= 0x5FFF:
		return neserr.NewBus(addr, true, "expansion ROM is not implemented")
	default:
		return b.Cartridge.Write(addr, x)
	}
}

func (b *Bus) spriteDMA(page byte) error {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		v, err := b.CPURead(base + uint16(i))
		if err != nil {
			return err
		}
		b.PPU.WriteOAMByte(byte(i), v)
	}
	b.dmaPending = true
	return nil
}

// DMAPending reports whether a sprite DMA copy happened since the flag was
// last consumed.
func (b *Bus) DMAPending() bool {
	return b.dmaPending
}

// ConsumeDMAPending clears and returns the DMA-pending flag. The CPU calls
// this at the top of Step to decide whether to charge the 513/514-cycle
// stall before executing its next instruction.
func (b *Bus) ConsumeDMAPending() bool {
	pending := b.dmaPending
	b.dmaPending = false
	return pending
}

// PeekCPU reads a CPU-visible address without triggering read side effects
// (in particular, it never clears PPU vblank). The debugger uses this.
func (b *Bus) PeekCPU(addr uint16) (byte, error) {
	switch {
	case addr <= 0x1FFF:
		return b.RAM[addr&ramMask], nil
	case addr <= 0x3FFF:
		return b.PPU.Peek(0x2000 + addr&0x0007), nil
	case addr == 0x4014:
		return 0, nil
	case addr <= 0x4013, addr >= 0x4015 && addr <= 0x4017:
		return 0, nil
	case addr <= 0x5FFF:
		return 0, nil
	default:
		return b.Cartridge.Read(addr)
	}
}
