// Package monitor keeps the host side view of a device: switch states,
// the temperature warning and the door status log.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/homectl/pkg/l1/report"
)

// DefaultThreshold is the temperature above which a warning is raised.
const DefaultThreshold = 27.0

// DefaultMaxDoorLog bounds the door log.
const DefaultMaxDoorLog = 1000

// Switches the device toggles.
const (
	SwitchLamp = "LAMP"
	SwitchPlug = "PLUG"
)

// DoorEvent is an entry of the door log.
type DoorEvent struct {
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

// State is a snapshot of the monitor.
type State struct {
	Lamp           bool        `json:"lamp"`
	Plug           bool        `json:"plug"`
	Temperature    float64     `json:"temperature"`
	HasTemperature bool        `json:"has_temperature"`
	Warning        bool        `json:"warning"`
	Door           string      `json:"door,omitempty"`
	DoorLog        []DoorEvent `json:"door_log,omitempty"`
	Rejected       int         `json:"rejected"`
}

// Monitor applies reports to State. It is safe for concurrent use.
type Monitor struct {
	Threshold  float64
	MaxDoorLog int
	// Now returns the time for door log entries.
	Now func() time.Time
	// OnWarning is called when the warning is raised.
	OnWarning func(temperature float64)

	lock  sync.RWMutex
	state State
}

// New creates a Monitor with defaults.
func New() *Monitor {
	return &Monitor{
		Threshold:  DefaultThreshold,
		MaxDoorLog: DefaultMaxDoorLog,
		Now:        time.Now,
	}
}

// HandleReport implements comm.ReportHandler.
func (m *Monitor) HandleReport(_ context.Context, r *report.Report) {
	m.Apply(r)
}

// Apply updates the state from a report.
func (m *Monitor) Apply(r *report.Report) {
	var raised bool
	m.lock.Lock()
	switch r.Kind {
	case report.KindTemperature:
		m.state.Temperature, m.state.HasTemperature = r.Temperature, true
		warn := r.Temperature > m.Threshold
		raised = warn && !m.state.Warning
		m.state.Warning = warn
	case report.KindDoor:
		m.state.Door = r.Door
		m.state.DoorLog = append(m.state.DoorLog, DoorEvent{Time: m.Now(), Status: r.Door})
		if limit := m.MaxDoorLog; limit > 0 && len(m.state.DoorLog) > limit {
			m.state.DoorLog = append([]DoorEvent(nil), m.state.DoorLog[len(m.state.DoorLog)-limit:]...)
		}
	case report.KindAck:
		switch r.Command {
		case SwitchLamp:
			m.state.Lamp = !m.state.Lamp
		case SwitchPlug:
			m.state.Plug = !m.state.Plug
		}
	case report.KindRejected:
		m.state.Rejected++
	}
	m.lock.Unlock()

	if raised {
		glog.Warningf("temperature %.1f above threshold %.1f", r.Temperature, m.Threshold)
		if fn := m.OnWarning; fn != nil {
			fn(r.Temperature)
		}
	}
}

// ClearWarning dismisses the warning until the next reading above threshold.
func (m *Monitor) ClearWarning() {
	m.lock.Lock()
	m.state.Warning = false
	m.lock.Unlock()
}

// State returns a copy of the current state.
func (m *Monitor) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s := m.state
	s.DoorLog = append([]DoorEvent(nil), m.state.DoorLog...)
	return s
}
