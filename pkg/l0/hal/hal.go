// Package hal is the hardware abstraction the device logic runs on.
package hal

import (
	"errors"
	"fmt"
)

// Parity defines the parity mode of a serial frame.
type Parity int

// Parity modes.
const (
	NoParity Parity = iota
	OddParity
	EvenParity
)

// FrameFormat is the data-bits/stop-bits/parity configuration of a serial port.
type FrameFormat struct {
	DataBits int
	StopBits int
	Parity   Parity
}

// Frame8N1 is 8 data bits, no parity, 1 stop bit.
var Frame8N1 = FrameFormat{DataBits: 8, StopBits: 1, Parity: NoParity}

// DefaultBaudRate is the baud rate the device talks at.
const DefaultBaudRate = 9600

// String implements fmt.Stringer, e.g. "8N1".
func (f FrameFormat) String() string {
	p := "N"
	switch f.Parity {
	case OddParity:
		p = "O"
	case EvenParity:
		p = "E"
	}
	return fmt.Sprintf("%d%s%d", f.DataBits, p, f.StopBits)
}

// Validate checks the format is supported.
func (f FrameFormat) Validate() error {
	if f.DataBits < 5 || f.DataBits > 8 {
		return fmt.Errorf("invalid data bits %d", f.DataBits)
	}
	if f.StopBits != 1 && f.StopBits != 2 {
		return fmt.Errorf("invalid stop bits %d", f.StopBits)
	}
	if f.Parity < NoParity || f.Parity > EvenParity {
		return fmt.Errorf("invalid parity %d", f.Parity)
	}
	return nil
}

var (
	// ErrNoData indicates ReadByte was called with nothing received.
	ErrNoData = errors.New("no data available")
	// ErrNotConfigured indicates the port is used before Configure.
	ErrNotConfigured = errors.New("port not configured")
	// ErrInvalidBaudRate indicates a non-positive baud rate.
	ErrInvalidBaudRate = errors.New("invalid baud rate")
)

// Port is a polled serial port.
type Port interface {
	// Configure sets baud rate and frame format.
	Configure(baud int, format FrameFormat) error
	// ByteAvailable checks for received data without blocking.
	ByteAvailable() bool
	// ReadByte reads one received byte, ErrNoData if none.
	ReadByte() (byte, error)
	// Write sends bytes.
	Write(p []byte) (int, error)
}
