package cpu

// Flags are the 8 bits that make up the 6502 status register (the P
// register), minus the one bit (5) that has no storage of its own and
// always reads back as 1.
//
// 7654 3210
// NV1B DIZC
type Flags struct {
	Negative         bool // bit 7
	Overflow         bool // bit 6
	B                bool // bit 4; only meaningful in a pushed copy
	Decimal          bool // bit 3; storable, never affects ADC/SBC on the NES
	DisableInterrupt bool // bit 2
	Zero             bool // bit 1
	Carry            bool // bit 0
}

// FlagsFromByte decodes a packed status byte, as pulled off the stack or
// loaded at reset.
func FlagsFromByte(b byte) Flags {
	return Flags{
		Negative:         b&0x80 != 0,
		Overflow:         b&0x40 != 0,
		B:                b&0x10 != 0,
		Decimal:          b&0x08 != 0,
		DisableInterrupt: b&0x04 != 0,
		Zero:             b&0x02 != 0,
		Carry:            b&0x01 != 0,
	}
}

// AsByte packs Flags back into a status byte, forcing bit 5 on as real
// hardware does whenever the status register is read or pushed.
func (f Flags) AsByte() byte {
	var b byte
	if f.Negative {
		b |= 0x80
	}
	if f.Overflow {
		b |= 0x40
	}
	b |= 0x20
	if f.B {
		b |= 0x10
	}
	if f.Decimal {
		b |= 0x08
	}
	if f.DisableInterrupt {
		b |= 0x04
	}
	if f.Zero {
		b |= 0x02
	}
	if f.Carry {
		b |= 0x01
	}
	return b
}
