package line

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(a *Assembler, in string) (lines []string) {
	for i := 0; i < len(in); i++ {
		if l, ok := a.Feed(in[i]); ok {
			lines = append(lines, l)
		}
	}
	return
}

func TestAssembler(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect []string
	}{
		{"single command", "LAMP\n", []string{"LAMP"}},
		{"carriage return", "PLUG\r", []string{"PLUG"}},
		{"empty line", "\n", []string{""}},
		{"crlf yields empty line", "LAMP\r\n", []string{"LAMP", ""}},
		{"multiple", "LAMP\nPLUG\nFOO\n", []string{"LAMP", "PLUG", "FOO"}},
		{"no terminator", "LAMP", nil},
		{"no trimming", " LAMP \n", []string{" LAMP "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var a Assembler
			require.Equal(t, tc.expect, feedAll(&a, tc.in))
		})
	}
}

func TestAssemblerResetsAfterLine(t *testing.T) {
	var a Assembler
	for _, c := range []byte("LAMP") {
		_, ok := a.Feed(c)
		require.False(t, ok)
	}
	require.Equal(t, 4, a.Pending())
	l, ok := a.Feed('\n')
	require.True(t, ok)
	require.Equal(t, "LAMP", l)
	require.Zero(t, a.Pending())
}

func TestAssemblerTruncates(t *testing.T) {
	var a Assembler
	in := strings.Repeat("abcdefghij", 4)
	require.Len(t, in, 40)
	require.Empty(t, feedAll(&a, in))
	require.Equal(t, MaxLength, a.Pending())
	require.Equal(t, 40-MaxLength, a.Dropped())

	l, ok := a.Feed('\n')
	require.True(t, ok)
	require.Len(t, l, 31)
	require.Equal(t, in[:31], l)
	require.Zero(t, a.Dropped())

	require.Equal(t, []string{"LAMP"}, feedAll(&a, "LAMP\n"))
}

func TestBuffer(t *testing.T) {
	var b Buffer
	for i := 0; i < MaxLength; i++ {
		require.False(t, b.Full())
		require.True(t, b.Append('x'))
	}
	require.True(t, b.Full())
	require.False(t, b.Append('y'))
	require.Equal(t, strings.Repeat("x", MaxLength), b.String())
	b.Reset()
	require.Zero(t, b.Len())
	require.Empty(t, b.String())
}
