package hal

import (
	"io"
	"os"
)

type stdio struct {
	io.Reader
	io.Writer
}

// Close closes stdin so a pending read returns.
func (s stdio) Close() error {
	return os.Stdin.Close()
}

// Stdio returns stdin/stdout as a single stream, for running the
// device logic without hardware.
func Stdio() io.ReadWriteCloser {
	return stdio{Reader: os.Stdin, Writer: os.Stdout}
}
