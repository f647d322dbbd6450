package websocket

import (
	"strings"

	"golang.org/x/net/websocket"

	"github.com/robotalks/homectl/pkg/l1/comm"
)

// ReadWriter implements comm.LineReadWriter, one line per text frame.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadLine implements LineReader.
func (p *ReadWriter) ReadLine() (l string, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &l)
	return strings.TrimRight(l, "\r\n"), err
}

// WriteLine implements LineWriter.
func (p *ReadWriter) WriteLine(l string) error {
	if strings.ContainsAny(l, "\r\n") {
		return comm.ErrInvalidLine
	}
	return websocket.Message.Send((*websocket.Conn)(p), l)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
