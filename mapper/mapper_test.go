package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownMapperErrors(t *testing.T) {
	_, err := New(99, 1, 1)
	assert.Error(t, err)
}

func TestNROMSingleBankMirrors(t *testing.T) {
	m, err := New(0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.PRGAddr(0x8000))
	assert.Equal(t, 0x3FFF, m.PRGAddr(0xBFFF))
	assert.Equal(t, 0, m.PRGAddr(0xC000)) // second half mirrors the first
	assert.Equal(t, 0x3FFF, m.PRGAddr(0xFFFF))
}

func TestNROMTwoBanksAreDirect(t *testing.T) {
	m, err := New(0, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.PRGAddr(0x8000))
	assert.Equal(t, 0x7FFF, m.PRGAddr(0xFFFF))
}

func TestMMC1ResetsToPRGMode3(t *testing.T) {
	m := newMMC1(8, 1)
	assert.Equal(t, byte(3), m.prgMode())
}

func TestMMC1FiveWriteShiftSequence(t *testing.T) {
	m := newMMC1(8, 1)
	// Select CHR mode 1 (4KiB+4KiB) and PRG mode 0 via the control register
	// at 0x8000: value 0b10011 = 0x13, LSB-first over 5 writes.
	value := byte(0x13)
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		m.WritePRG(0x8000, bit)
	}
	assert.Equal(t, value, m.control)
	assert.Equal(t, byte(1), m.chrMode())
}

func TestMMC1Bit7ResetsShiftAndForcesPRGMode3(t *testing.T) {
	m := newMMC1(8, 1)
	m.control = 0x00
	m.WritePRG(0x8000, 0x80)
	assert.Equal(t, mmc1ShiftReset, m.shift)
	assert.Equal(t, byte(3), m.prgMode())
}

func TestMMC1PRGMode3FixesLastBank(t *testing.T) {
	m := newMMC1(4, 1) // 4 * 16KiB PRG banks
	m.prg = 0           // switch the low 16KiB window to bank 0
	assert.Equal(t, 0, m.PRGAddr(0x8000))
	assert.Equal(t, 3*0x4000, m.PRGAddr(0xC000)) // last bank fixed at 0xC000
}
