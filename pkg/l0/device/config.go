package device

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/homectl/pkg/l0/hal"
	"github.com/robotalks/homectl/pkg/l0/hal/serial"
)

// StdioPort is the port name selecting stdin/stdout.
const StdioPort = "-"

// Config defines the configurations for the device.
type Config struct {
	// Port is a serial device path or StdioPort.
	Port      string
	BaudRate  int
	DrainAll  bool
	FIFODepth int
	// Interval overrides the clock derived loop interval when non-zero.
	Interval time.Duration
}

var defaultConfig = Config{
	Port:      StdioPort,
	BaudRate:  hal.DefaultBaudRate,
	FIFODepth: hal.DefaultFIFODepth,
}

func init() {
	if val := os.Getenv("HOMECTL_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("HOMECTL_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.BaudRate = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial device, - for stdin/stdout.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate.")
	flag.BoolVar(&defaultConfig.DrainAll, "drain", defaultConfig.DrainAll, "Read all pending input each iteration.")
	flag.IntVar(&defaultConfig.FIFODepth, "fifo", defaultConfig.FIFODepth, "Receive FIFO depth.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Loop interval, 0 derives it from the clock.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenPort opens the configured port. The returned closer releases it.
func (c *Config) OpenPort() (hal.Port, io.Closer, error) {
	if c.Port == StdioPort {
		rw := hal.Stdio()
		return hal.NewStreamPort(rw).WithDepth(c.FIFODepth), rw, nil
	}
	p, err := serial.Open(c.Port)
	if err != nil {
		return nil, nil, err
	}
	p.WithDepth(c.FIFODepth)
	return p, p, nil
}

// NewDevice creates and initializes a Device on port.
func (c *Config) NewDevice(port hal.Port) (*Device, error) {
	d := New(port)
	d.BaudRate, d.DrainAll, d.Interval = c.BaudRate, c.DrainAll, c.Interval
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("configure port %s: %v", c.Port, err)
	}
	return d, nil
}
