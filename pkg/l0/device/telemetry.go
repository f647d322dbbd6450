package device

import (
	"io"
	"strconv"
)

// Simulated temperature range, inclusive.
const (
	TempMin = 25
	TempMax = 40
)

// DoorClosed is the only door status the device reports.
const DoorClosed = "CLOSED"

// NextTemp returns the temperature following v.
func NextTemp(v int) int {
	if v++; v > TempMax {
		return TempMin
	}
	return v
}

// TempCounter is the simulated temperature. The zero value reads TempMin.
type TempCounter struct {
	offset int
}

// Value returns the current temperature.
func (c *TempCounter) Value() int {
	return TempMin + c.offset
}

// Advance moves to the next temperature, wrapping to TempMin after TempMax.
func (c *TempCounter) Advance() {
	c.offset = NextTemp(c.Value()) - TempMin
}

// Emitter writes telemetry lines.
type Emitter struct {
	Writer io.Writer
	Temp   TempCounter
}

// Emit writes the door status and the current temperature, then
// advances the temperature.
func (e *Emitter) Emit() {
	writeOut(e.Writer, "DOOR:"+DoorClosed+"\n")
	writeOut(e.Writer, "TEMP:"+strconv.Itoa(e.Temp.Value())+"\n")
	e.Temp.Advance()
}
