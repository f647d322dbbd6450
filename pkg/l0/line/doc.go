// Package line assembles newline-terminated commands received
// byte by byte from a serial port.
package line

// A command line is plain ASCII ended by either '\n' or '\r'.
// The line buffer holds Capacity bytes including the terminator slot,
// so at most Capacity-1 content bytes are kept; anything beyond that
// is dropped until the next terminator.
