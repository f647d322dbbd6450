package device

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l0/hal"
	"github.com/robotalks/homectl/pkg/l0/line"
)

// Device runs the command and telemetry logic on a hal.Port.
type Device struct {
	Port     hal.Port
	BaudRate int
	Format   hal.FrameFormat
	Clock    hal.ClockConfig
	// Interval overrides the clock derived loop interval when non-zero.
	Interval time.Duration
	// DrainAll reads every available byte per iteration instead of one.
	DrainAll bool

	assembler  line.Assembler
	dispatcher Dispatcher
	telemetry  Emitter
	completed  []string
}

// New creates a Device at 9600 8N1 on the default clock.
func New(port hal.Port) *Device {
	return &Device{
		Port:       port,
		BaudRate:   hal.DefaultBaudRate,
		Format:     hal.Frame8N1,
		Clock:      hal.DefaultClock,
		dispatcher: Dispatcher{Writer: port},
		telemetry:  Emitter{Writer: port},
	}
}

// Init configures the serial port.
func (d *Device) Init() error {
	return d.Port.Configure(d.BaudRate, d.Format)
}

// Poll reads input and queues completed lines for Dispatch. Only one
// byte is read unless DrainAll is set.
func (d *Device) Poll() {
	for d.Port.ByteAvailable() {
		b, err := d.Port.ReadByte()
		if err != nil {
			glog.V(1).Infof("read: %v", err)
			return
		}
		if cmd, ok := d.assembler.Feed(b); ok {
			d.completed = append(d.completed, cmd)
		}
		if !d.DrainAll {
			return
		}
	}
}

// Dispatch responds to the lines completed by Poll.
func (d *Device) Dispatch() {
	for _, cmd := range d.completed {
		d.dispatcher.Dispatch(cmd)
	}
	d.completed = d.completed[:0]
}

// Pending returns the number of completed lines not yet dispatched.
func (d *Device) Pending() int {
	return len(d.completed)
}

// Emit writes one round of telemetry.
func (d *Device) Emit() {
	d.telemetry.Emit()
}

// Step runs one loop iteration without the wait.
func (d *Device) Step() {
	d.Poll()
	d.Dispatch()
	d.Emit()
}

// Temperature returns the temperature the next Emit reports.
func (d *Device) Temperature() int {
	return d.telemetry.Temp.Value()
}

// LoopInterval returns the wait between iterations.
func (d *Device) LoopInterval() time.Duration {
	if d.Interval > 0 {
		return d.Interval
	}
	return d.Clock.LoopInterval()
}

// AddToLoop implements LoopAdder.
func (d *Device) AddToLoop(loop *fx.Loop) {
	loop.Interval = d.LoopInterval()
	if adder, ok := d.Port.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := d.Port.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddController(fx.PrLvInput, fx.ControlFunc(func(fx.ControlContext) error {
		d.Poll()
		return nil
	}))
	loop.AddController(fx.PrLvDispatch, fx.ControlFunc(func(fx.ControlContext) error {
		d.Dispatch()
		return nil
	}))
	loop.AddController(fx.PrLvEmit, fx.ControlFunc(func(fx.ControlContext) error {
		d.Emit()
		return nil
	}))
}
