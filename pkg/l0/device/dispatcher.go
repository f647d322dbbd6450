package device

import (
	"io"

	"github.com/golang/glog"
)

// Commands understood by the device.
const (
	CommandLamp = "LAMP"
	CommandPlug = "PLUG"
)

// Responses written for commands.
const (
	ResponseLamp    = "LAMP TOGGLED\n"
	ResponsePlug    = "PLUG TOGGLED\n"
	ResponseUnknown = "UNKNOWN COMMAND\n"
)

// Response maps a command line to its response. Matching is exact
// and case-sensitive.
func Response(cmd string) string {
	switch cmd {
	case CommandLamp:
		return ResponseLamp
	case CommandPlug:
		return ResponsePlug
	default:
		return ResponseUnknown
	}
}

// Dispatcher writes the response for each completed command.
type Dispatcher struct {
	Writer io.Writer
}

// Dispatch writes the response of cmd. Write errors are only logged.
func (d *Dispatcher) Dispatch(cmd string) {
	glog.V(2).Infof("command %q", cmd)
	writeOut(d.Writer, Response(cmd))
}

func writeOut(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		glog.V(1).Infof("write %q: %v", s, err)
	}
}
