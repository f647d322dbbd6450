package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/homectl/pkg/l1/comm"
)

type bufStream struct {
	io.Reader
	bytes.Buffer
}

func (s *bufStream) Read(p []byte) (int, error) {
	return s.Reader.Read(p)
}

func TestReadLine(t *testing.T) {
	s := &bufStream{Reader: strings.NewReader("DOOR:CLOSED\nTEMP:25\r\n\nLAMP")}
	rw := New(s)
	for _, expect := range []string{"DOOR:CLOSED", "TEMP:25", "", "LAMP"} {
		l, err := rw.ReadLine()
		require.NoError(t, err)
		require.Equal(t, expect, l)
	}
	_, err := rw.ReadLine()
	require.Equal(t, io.EOF, err)
}

func TestWriteLine(t *testing.T) {
	s := &bufStream{Reader: strings.NewReader("")}
	rw := New(s)
	require.NoError(t, rw.WriteLine("LAMP"))
	require.NoError(t, rw.WriteLine(""))
	require.Equal(t, comm.ErrInvalidLine, rw.WriteLine("LAMP\nPLUG"))
	require.Equal(t, "LAMP\n\n", s.Buffer.String())
}
