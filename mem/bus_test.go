package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nesgo/cartridge"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	raw := make([]byte, 16+2*16384+8192)
	copy(raw[0:4], []byte{'N', 'E', 'S', 0x1A})
	raw[4] = 2
	raw[5] = 1
	cart, err := cartridge.New(raw)
	require.NoError(t, err)
	return New(cart)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus(t)
	require.NoError(t, b.CPUWrite(0x0001, 0x42))
	v, err := b.CPURead(0x0801)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
}

func TestPPURegisterMirroring(t *testing.T) {
	b := newTestBus(t)
	require.NoError(t, b.CPUWrite(0x2000, 0x80)) // PPUCTRL
	v, err := b.CPURead(0x2008)                   // mirror of 0x2000
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), v)
}

func TestDMAReadIsFatal(t *testing.T) {
	b := newTestBus(t)
	_, err := b.CPURead(0x4014)
	assert.Error(t, err)
}

func TestExpansionROMReadIsFatal(t *testing.T) {
	b := newTestBus(t)
	_, err := b.CPURead(0x4100)
	assert.Error(t, err)
}

func TestAPURegionReadsZero(t *testing.T) {
	b := newTestBus(t)
	v, err := b.CPURead(0x4000)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v)
}

func TestSpriteDMACopiesPageIntoOAM(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 256; i++ {
		require.NoError(t, b.CPUWrite(0x0300+uint16(i), byte(i)))
	}
	require.NoError(t, b.CPUWrite(0x4014, 0x03))

	assert.True(t, b.ConsumeDMAPending())
	for i := 0; i < 256; i++ {
		assert.Equal(t, byte(i), b.PPU.OAM[i])
	}
}

func TestConsumeDMAPendingClearsFlag(t *testing.T) {
	b := newTestBus(t)
	require.NoError(t, b.CPUWrite(0x4014, 0x00))
	assert.True(t, b.ConsumeDMAPending())
	assert.False(t, b.ConsumeDMAPending())
}

func TestPeekCPUDoesNotClearVBlank(t *testing.T) {
	b := newTestBus(t)
	b.PPU.SetVBlank(true)
	v, err := b.PeekCPU(0x2002)
	require.NoError(t, err)
	assert.True(t, v&0x80 != 0)
	assert.True(t, b.PPU.InVBlank(), "Peek must not clear vblank")
}
