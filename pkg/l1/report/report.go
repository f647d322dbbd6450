// Package report classifies the lines a device writes.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the kind of a report.
type Kind int

// Report kinds.
const (
	KindUnknown Kind = iota
	KindTemperature
	KindDoor
	KindAck
	KindRejected
)

var kindNames = []string{"unknown", "temp", "door", "ack", "rejected"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// ParseKind is the reverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for n, name := range kindNames {
		if name == s {
			return Kind(n), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown report kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) (err error) {
	*k, err = ParseKind(string(text))
	return
}

// Line prefixes and suffixes written by the device.
const (
	PrefixTemperature = "TEMP:"
	PrefixDoor        = "DOOR:"
	SuffixAck         = " TOGGLED"
	LineRejected      = "UNKNOWN COMMAND"
)

// Report is a parsed device line.
type Report struct {
	Kind        Kind    `json:"kind"`
	Line        string  `json:"line"`
	Temperature float64 `json:"temperature,omitempty"`
	Door        string  `json:"door,omitempty"`
	Command     string  `json:"command,omitempty"`
}

// ErrInvalidReport indicates a recognized line with a malformed value.
var ErrInvalidReport = errors.New("invalid report")

// ParseError wraps the line failed to parse.
type ParseError struct {
	Line string
	Err  error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrInvalidReport, e.Line, e.Err)
}

// Unwrap supports errors.Is(err, ErrInvalidReport).
func (e *ParseError) Unwrap() []error {
	return []error{ErrInvalidReport, e.Err}
}

// Parse classifies a line. Surrounding whitespace is ignored.
// Unrecognized lines are KindUnknown without error.
func Parse(line string) (*Report, error) {
	line = strings.TrimSpace(line)
	r := &Report{Line: line}
	switch {
	case strings.HasPrefix(line, PrefixTemperature):
		val, err := strconv.ParseFloat(strings.TrimSpace(line[len(PrefixTemperature):]), 64)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		r.Kind, r.Temperature = KindTemperature, val
	case strings.HasPrefix(line, PrefixDoor):
		r.Kind, r.Door = KindDoor, strings.TrimSpace(line[len(PrefixDoor):])
	case strings.HasSuffix(line, SuffixAck):
		r.Kind, r.Command = KindAck, strings.TrimSuffix(line, SuffixAck)
	case line == LineRejected:
		r.Kind = KindRejected
	}
	return r, nil
}
