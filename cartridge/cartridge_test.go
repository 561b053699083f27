package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHeader(nprg, nchr, control1 byte) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], magic[:])
	h[4] = nprg
	h[5] = nchr
	h[6] = control1
	return h
}

func TestNewRejectsShortFile(t *testing.T) {
	_, err := New([]byte{0x4E, 0x45})
	assert.Error(t, err)
}

func TestNewRejectsBadMagic(t *testing.T) {
	raw := validHeader(1, 1, 0)
	raw[0] = 'X'
	raw = append(raw, make([]byte, prgBankSize+chrBankSize)...)
	_, err := New(raw)
	assert.Error(t, err)
}

func TestNewRejectsZeroPRGBanks(t *testing.T) {
	raw := validHeader(0, 1, 0)
	raw = append(raw, make([]byte, chrBankSize)...)
	_, err := New(raw)
	assert.Error(t, err)
}

func TestNewParsesMinimalNROM(t *testing.T) {
	raw := validHeader(1, 1, 0)
	raw = append(raw, make([]byte, prgBankSize+chrBankSize)...)
	raw[headerSize] = 0xAB // first PRG byte

	c, err := New(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0), c.MapperNumber)
	assert.Len(t, c.PRG, prgBankSize)
	assert.Len(t, c.CHR, chrBankSize)
	assert.Equal(t, byte(0xAB), c.PRG[0])
}

func TestNewFallsBackToCHRRAM(t *testing.T) {
	raw := validHeader(1, 0, 0)
	raw = append(raw, make([]byte, prgBankSize)...)

	c, err := New(raw)
	require.NoError(t, err)
	assert.Len(t, c.CHR, chrBankSize)
}

func TestNewSkipsTrainer(t *testing.T) {
	raw := validHeader(1, 1, trainerBit)
	body := make([]byte, trainerSize+prgBankSize+chrBankSize)
	body[trainerSize] = 0xCD // first PRG byte, after the trainer
	raw = append(raw, body...)

	c, err := New(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0xCD), c.PRG[0])
}

func TestReadDispatchesByRegion(t *testing.T) {
	raw := validHeader(2, 1, 0)
	raw = append(raw, make([]byte, 2*prgBankSize+chrBankSize)...)
	raw[headerSize] = 0x11              // PRG[0], visible at 0x8000
	raw[headerSize+2*prgBankSize] = 0x22 // CHR[0]

	c, err := New(raw)
	require.NoError(t, err)

	v, err := c.Read(0x8000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), v)

	v, err = c.Read(0x0000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x22), v)

	err = c.Write(0x6000, 0x55)
	require.NoError(t, err)
	v, err = c.Read(0x6000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), v)
}

func TestReadRejectsUnmappedRegion(t *testing.T) {
	raw := validHeader(1, 1, 0)
	raw = append(raw, make([]byte, prgBankSize+chrBankSize)...)
	c, err := New(raw)
	require.NoError(t, err)

	_, err = c.Read(0x4020)
	assert.Error(t, err)
}
