// Package serial provides hal.Port on top of an OS serial device.
package serial

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	bugst "go.bug.st/serial"

	"github.com/robotalks/homectl/pkg/l0/hal"
)

// Port is a serial device used as hal.Port.
type Port struct {
	*hal.StreamPort
	Name string

	dev bugst.Port
}

var _ hal.Port = (*Port)(nil)

// Open opens the serial device at 9600 8N1. Configure may change it later.
func Open(name string) (*Port, error) {
	mode, err := modeOf(hal.DefaultBaudRate, hal.Frame8N1)
	if err != nil {
		return nil, err
	}
	dev, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", name, err)
	}
	glog.V(1).Infof("serial %s opened", name)
	return &Port{StreamPort: hal.NewStreamPort(dev), Name: name, dev: dev}, nil
}

// Configure implements hal.Port and programs the device.
func (p *Port) Configure(baud int, format hal.FrameFormat) error {
	mode, err := modeOf(baud, format)
	if err != nil {
		return err
	}
	if err := p.dev.SetMode(mode); err != nil {
		return fmt.Errorf("configure %s: %v", p.Name, err)
	}
	return p.StreamPort.Configure(baud, format)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.dev.Close()
}

// OpenStream opens the serial device as a plain byte stream at baud 8N1,
// for host side tools talking to a device.
func OpenStream(name string, baud int) (io.ReadWriteCloser, error) {
	mode, err := modeOf(baud, hal.Frame8N1)
	if err != nil {
		return nil, err
	}
	dev, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", name, err)
	}
	glog.V(1).Infof("serial %s opened at %d", name, baud)
	return dev, nil
}

// List enumerates serial devices on the system.
func List() ([]string, error) {
	return bugst.GetPortsList()
}

func modeOf(baud int, format hal.FrameFormat) (*bugst.Mode, error) {
	if baud <= 0 {
		return nil, hal.ErrInvalidBaudRate
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: format.DataBits,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	switch format.Parity {
	case hal.OddParity:
		mode.Parity = bugst.OddParity
	case hal.EvenParity:
		mode.Parity = bugst.EvenParity
	}
	if format.StopBits == 2 {
		mode.StopBits = bugst.TwoStopBits
	}
	return mode, nil
}
