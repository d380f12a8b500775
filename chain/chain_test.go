package chain

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memwalk/process"
	"memwalk/process/memory_map"
	"memwalk/process_blob"
)

func putPointer(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:], v)
}

func TestResolveEmptyChain(t *testing.T) {
	dump := process_blob.NewProcessDump()
	assert.Equal(t, process.ProcessMemoryAddress(0x1234), Resolve(dump, 0x1234, nil))
	assert.Equal(t, process.ProcessMemoryAddress(0x1234), Resolve(dump, 0x1234, Chain{}))
	assert.Zero(t, dump.Reads())
}

func TestResolveTwoSteps(t *testing.T) {
	const (
		a  = 0x1000
		b  = 0x2000
		c  = 0xDEADBEEF
		o1 = 0x18
		o2 = 0x40
	)
	region := make([]byte, 0x2000)
	putPointer(region, a+o1-0x1000, b)
	putPointer(region, b+o2-0x1000, c)
	dump := process_blob.NewProcessDump().Map(0x1000, region, memory_map.PageReadWrite)

	assert.Equal(t, process.ProcessMemoryAddress(c), Resolve(dump, a, Chain{o1, o2}))
}

func TestResolveOriginalChain(t *testing.T) {
	// match -> RenderView -> FakeDataModel -> RealDataModel
	region := make([]byte, 0x4000)
	const base = 0x10000
	putPointer(region, 0x100+0x1E8, base+0x1000)
	putPointer(region, 0x1000+0x118, base+0x2000)
	putPointer(region, 0x2000+0x1A8, base+0x3000)
	dump := process_blob.NewProcessDump().Map(base, region, memory_map.PageReadWrite)

	steps := NewResolver(dump, 8).Trace(base+0x100, Chain{0x1E8, 0x118, 0x1A8})
	require.Len(t, steps, 3)
	assert.Equal(t, process.ProcessMemoryAddress(base+0x1000), steps[0].Value)
	assert.Equal(t, process.ProcessMemoryAddress(base+0x2000), steps[1].Value)
	assert.Equal(t, process.ProcessMemoryAddress(base+0x3000), steps[2].Value)
	assert.Equal(t, process.ProcessMemoryAddress(base+0x1000+0x118), steps[1].Address)
	for _, s := range steps {
		assert.NoError(t, s.Err)
	}
}

func TestResolveNegativeOffset(t *testing.T) {
	region := make([]byte, 0x100)
	putPointer(region, 0x10, 0xCAFE)
	dump := process_blob.NewProcessDump().Map(0x1000, region, memory_map.PageReadWrite)

	assert.Equal(t, process.ProcessMemoryAddress(0xCAFE), Resolve(dump, 0x1020, Chain{-0x10}))
}

func TestResolvePropagatesFailedReads(t *testing.T) {
	region := make([]byte, 0x100)
	putPointer(region, 0x8, 0x9999000) // unmapped
	dump := process_blob.NewProcessDump().Map(0x1000, region, memory_map.PageReadWrite)

	steps := NewResolver(dump, 0).Trace(0x1000, Chain{0x8, 0x10, 0x20})
	require.Len(t, steps, 3)
	assert.NoError(t, steps[0].Err)
	assert.Error(t, steps[1].Err)
	assert.Zero(t, steps[1].Value)
	// continues from zero without stopping
	assert.Equal(t, process.ProcessMemoryAddress(0x20), steps[2].Address)
	assert.Error(t, steps[2].Err)

	assert.Zero(t, Final(0x1000, steps))
}

func TestResolveFourBytePointers(t *testing.T) {
	region := make([]byte, 0x100)
	binary.LittleEndian.PutUint32(region[0x4:], 0x1080)
	binary.LittleEndian.PutUint32(region[0x88:], 0xABCD)
	dump := process_blob.NewProcessDump().Map(0x1000, region, memory_map.PageReadWrite)

	assert.Equal(t, process.ProcessMemoryAddress(0xABCD), NewResolver(dump, 4).Resolve(0x1000, Chain{0x4, 0x8}))
}

func TestParseChain(t *testing.T) {
	c, err := ParseChain("0x1E8, 0x118,0x1a8")
	require.NoError(t, err)
	assert.Equal(t, Chain{0x1E8, 0x118, 0x1A8}, c)
	assert.Equal(t, "0x1E8,0x118,0x1A8", c.String())

	c, err = ParseChain("-0x10,16")
	require.NoError(t, err)
	assert.Equal(t, Chain{-16, 16}, c)
	assert.Equal(t, "-0x10,0x10", c.String())

	c, err = ParseChain("")
	require.NoError(t, err)
	assert.Empty(t, c)

	_, err = ParseChain("0x1E8,zz")
	assert.Error(t, err)
}
