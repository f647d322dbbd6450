package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/robotalks/homectl/pkg/l1/comm"
)

// ReadWriter implements LineReadWriter over a byte stream.
// Lines are terminated by '\n'; a preceding '\r' is dropped.
type ReadWriter struct {
	reader *bufio.Reader
	writer io.Writer
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{reader: bufio.NewReader(s), writer: s}
}

// ReadLine implements LineReader. A final line without terminator
// is returned before io.EOF.
func (p *ReadWriter) ReadLine() (string, error) {
	s, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && s != "" {
			return strings.TrimRight(s, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// WriteLine implements LineWriter.
func (p *ReadWriter) WriteLine(l string) error {
	if strings.ContainsAny(l, "\r\n") {
		return comm.ErrInvalidLine
	}
	_, err := io.WriteString(p.writer, l+"\n")
	return err
}

// ReadWriteCloser is a ReadWriter that also closes the stream.
type ReadWriteCloser struct {
	*ReadWriter
	io.Closer
}

// NewCloser creates a ReadWriteCloser.
func NewCloser(s io.ReadWriteCloser) *ReadWriteCloser {
	return &ReadWriteCloser{ReadWriter: New(s), Closer: s}
}
