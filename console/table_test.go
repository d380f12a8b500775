package console

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memwalk/chain"
)

func TestTableRender(t *testing.T) {
	table := NewTable(Column{Header: "NAME"}, Column{Header: "BUILD"}, Column{Header: "CHAIN"})
	table.AddRow("roblox", "default", "0x1E8,0x118")
	table.AddRow("x", "")

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))

	assert.Equal(t,
		"NAME    BUILD    CHAIN\n"+
			"------  -------  -----------\n"+
			"roblox  default  0x1E8,0x118\n"+
			"x       -        -\n",
		buf.String())
}

func TestVisibleLengthSkipsEscapes(t *testing.T) {
	assert.Equal(t, 2, visibleLength("\x1b[32mok\x1b[0m"))
	assert.Equal(t, 5, visibleLength("plain"))
}

func TestStepsTable(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false, false)

	steps := []chain.Step{
		{Base: 0x1501, Offset: 0x1E8, Address: 0x16E9, Value: 0x2100},
		{Base: 0x2100, Offset: -0x8, Address: 0x20F8, Err: errors.New("unmapped")},
	}
	require.NoError(t, r.PrintTable(r.StepsTable(steps, func(i int) string { return fmt.Sprintf("hop%d", i) })))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "hop0  0x00000000000016E9  0x1E8   0x0000000000002100  ok", lines[2])
	assert.Equal(t, "hop1  0x00000000000020F8  -0x8    0x0000000000000000  failed", lines[3])
}
