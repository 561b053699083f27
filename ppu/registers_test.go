package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusReadClearsVBlankAndLatch(t *testing.T) {
	r := New()
	r.SetVBlank(true)
	r.writeLatch = true

	v := r.Read(0x2002)
	assert.True(t, v&flagVBlank != 0)
	assert.False(t, r.InVBlank())
	assert.False(t, r.writeLatch)
}

func TestPeekStatusDoesNotClearVBlank(t *testing.T) {
	r := New()
	r.SetVBlank(true)
	v := r.Peek(0x2002)
	assert.True(t, v&flagVBlank != 0)
	assert.True(t, r.InVBlank())
}

func TestScrollLatchAltersXThenY(t *testing.T) {
	r := New()
	r.Write(0x2005, 0x11)
	r.Write(0x2005, 0x22)
	assert.Equal(t, byte(0x11), r.scrollX)
	assert.Equal(t, byte(0x22), r.scrollY)
}

func TestAddressLatchTwoWrites(t *testing.T) {
	r := New()
	r.Write(0x2006, 0x21) // high byte (masked to 6 bits)
	r.Write(0x2006, 0x05) // low byte
	assert.Equal(t, uint16(0x2105), r.addr)
}

func TestOAMDataAutoIncrementsAddr(t *testing.T) {
	r := New()
	r.Write(0x2003, 0x10) // OAMADDR
	r.Write(0x2004, 0xAB) // OAMDATA
	assert.Equal(t, byte(0xAB), r.OAM[0x10])
	assert.Equal(t, byte(0x11), r.OAMAddr)
}

func TestBufferedDataReadIsOneBehind(t *testing.T) {
	r := New()
	r.VRAM[0x0000] = 0x11
	r.VRAM[0x0001] = 0x22
	r.Write(0x2006, 0x00)
	r.Write(0x2006, 0x00) // addr = 0x0000

	first := r.Read(0x2007) // returns stale buffer (0), primes buffer with VRAM[0]
	assert.Equal(t, byte(0), first)

	second := r.Read(0x2007) // returns VRAM[0] that was buffered, primes with VRAM[1]
	assert.Equal(t, byte(0x11), second)
}

func TestPaletteReadIsUnbuffered(t *testing.T) {
	r := New()
	r.VRAM[0x3F00] = 0x99
	r.Write(0x2006, 0x3F)
	r.Write(0x2006, 0x00)

	v := r.Read(0x2007)
	assert.Equal(t, byte(0x99), v, "palette reads return VRAM immediately, not the stale buffer")
}

func TestWriteOAMByteBypassesOAMAddr(t *testing.T) {
	r := New()
	r.OAMAddr = 0x50
	r.WriteOAMByte(0x00, 0x7F)
	assert.Equal(t, byte(0x7F), r.OAM[0])
	assert.Equal(t, byte(0x50), r.OAMAddr, "DMA writes must not disturb OAMADDR")
}

func TestNMIEnabled(t *testing.T) {
	r := New()
	assert.False(t, r.NMIEnabled())
	r.Write(0x2000, 0x80)
	assert.True(t, r.NMIEnabled())
}
