// Package device provides shell commands operating the attached device.
package device

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/homectl/pkg/cli/sh"
	"github.com/robotalks/homectl/pkg/l1/monitor"
)

// DoorLogTimeFormat formats door log entries.
const DoorLogTimeFormat = "2006-01-02 15:04:05"

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// FormatState renders the monitor state for display.
func FormatState(st monitor.State) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "LAMP: %s\n", onOff(st.Lamp))
	fmt.Fprintf(&w, "PLUG: %s\n", onOff(st.Plug))
	if st.HasTemperature {
		fmt.Fprintf(&w, "TEMP: %.1f", st.Temperature)
		if st.Warning {
			w.WriteString(" WARNING")
		}
		w.WriteByte('\n')
	} else {
		w.WriteString("TEMP: -\n")
	}
	door := st.Door
	if door == "" {
		door = "-"
	}
	fmt.Fprintf(&w, "DOOR: %s", door)
	if st.Rejected > 0 {
		fmt.Fprintf(&w, "\nREJECTED: %d", st.Rejected)
	}
	return w.String()
}

// FormatDoorLog renders the last n door log entries, all when n <= 0.
func FormatDoorLog(events []monitor.DoorEvent, n int) string {
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, ev.Time.Format(DoorLogTimeFormat)+" "+ev.Status)
	}
	return strings.Join(lines, "\n")
}

func toggleCmd(name string) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		sh.Send(c, name)
	})
}

var (
	// LampCmd toggles the lamp.
	LampCmd = ishell.Cmd{
		Name: "lamp",
		Help: "toggle the lamp",
		Func: toggleCmd(monitor.SwitchLamp),
	}

	// PlugCmd toggles the plug.
	PlugCmd = ishell.Cmd{
		Name: "plug",
		Help: "toggle the plug",
		Func: toggleCmd(monitor.SwitchPlug),
	}

	// SendCmd sends a raw command line.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Send(c, strings.Join(c.Args, " "))
		}),
	}

	// StatusCmd prints the monitor state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "print lamp, plug, temperature and door state",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			st := s.Session.Monitor.State()
			st.DoorLog = nil
			s.Print(c, st, FormatState(st))
		}),
	}

	// DoorLogCmd prints the door status log.
	DoorLogCmd = ishell.Cmd{
		Name: "doorlog",
		Help: "[N]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			n := 10
			if len(c.Args) > 0 {
				if _, err := fmt.Sscanf(c.Args[0], "%d", &n); err != nil {
					c.Err(fmt.Errorf("Invalid N: %v", err))
					return
				}
			}
			s := sh.ShellFrom(c)
			events := s.Session.Monitor.State().DoorLog
			if n > 0 && len(events) > n {
				events = events[len(events)-n:]
			}
			if events == nil {
				events = []monitor.DoorEvent{}
			}
			s.Print(c, events, FormatDoorLog(events, 0))
		}),
	}

	// RepairCmd clears the temperature warning.
	RepairCmd = ishell.Cmd{
		Name: "repair",
		Help: "clear the temperature warning",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.ShellFrom(c).Session.Monitor.ClearWarning()
			c.Println("OK")
		}),
	}

	// WatchCmd prints reports as they arrive.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[SECONDS], toggles watching without SECONDS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sess := sh.ShellFrom(c).Session
			if len(c.Args) == 0 {
				sess.SetWatch(!sess.Watching())
				c.Printf("watch %s\n", onOff(sess.Watching()))
				return
			}
			dur, err := time.ParseDuration(c.Args[0] + "s")
			if err != nil {
				c.Err(fmt.Errorf("Invalid SECONDS: %v", err))
				return
			}
			sess.SetWatch(true)
			select {
			case <-time.After(dur):
			case <-sess.Ctx.Done():
			}
			sess.SetWatch(false)
		}),
	}
)

func init() {
	sh.AddCmds(
		&LampCmd,
		&PlugCmd,
		&SendCmd,
		&StatusCmd,
		&DoorLogCmd,
		&RepairCmd,
		&WatchCmd,
	)
}
