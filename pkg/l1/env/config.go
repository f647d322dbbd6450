// Package env provides the configuration shared by host side tools.
//
// Values are resolved in order: built-in defaults, HOMECTL_* environment
// variables (a .env file in the working directory is loaded first,
// without overriding the process environment), the YAML file named by
// -config, then explicitly set flags.
package env

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/homectl/pkg/l0/hal"
	"github.com/robotalks/homectl/pkg/l0/hal/serial"
	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/comm"
	"github.com/robotalks/homectl/pkg/l1/comm/stream"
	"github.com/robotalks/homectl/pkg/l1/comm/mqtt"
	"github.com/robotalks/homectl/pkg/l1/comm/websocket"
	"github.com/robotalks/homectl/pkg/l1/monitor"
	"github.com/robotalks/homectl/pkg/l1/reportlog"
)

// DeviceType is the type under which devices are published.
const DeviceType = "homectl"

// Config defines host side configurations.
type Config struct {
	Info l1.DeviceInfo
	// Port is the serial device the device is attached to.
	Port     string
	BaudRate int
	// MQTTBrokerURL specifies the MQTT broker to use, empty disables MQTT.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	Threshold     float64
	// Listen is the address of the websocket feed, empty disables it.
	Listen string
	// FeedSecret enables token verification for commands from the feed.
	FeedSecret string
	// ReportLog is the file reports are appended to, empty disables it.
	ReportLog  string
	ConfigFile string
}

// File is the content of the YAML config file.
type File struct {
	Port      string   `yaml:"port"`
	Baud      int      `yaml:"baud"`
	MQTT      string   `yaml:"mqtt"`
	ID        string   `yaml:"id"`
	Threshold *float64 `yaml:"threshold"`
	Listen    string   `yaml:"listen"`
	Secret    string   `yaml:"feed_secret"`
	ReportLog string   `yaml:"report_log"`
}

// DotEnvFile is loaded into the environment before reading HOMECTL_*.
var DotEnvFile = ".env"

var defaultConfig = Config{
	Info: l1.DeviceInfo{
		Ref:  l1.DeviceRef{Type: DeviceType},
		Meta: l1.DeviceMeta{Description: "home control demo device"},
	},
	BaudRate:  hal.DefaultBaudRate,
	Threshold: monitor.DefaultThreshold,
}

func init() {
	if err := godotenv.Load(DotEnvFile); err != nil && !os.IsNotExist(err) {
		glog.Warningf("load %s: %v", DotEnvFile, err)
	}
	applyEnv(&defaultConfig, os.Getenv)
	if defaultConfig.Info.Ref.ID == "" {
		defaultConfig.Info.Ref.ID = MachineID()
	}
}

func applyEnv(c *Config, getenv func(string) string) {
	if val := getenv("HOMECTL_PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("HOMECTL_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			c.BaudRate = baud
		}
	}
	if val := getenv("HOMECTL_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("HOMECTL_ID"); val != "" {
		c.Info.Ref.ID = val
	}
	if val := getenv("HOMECTL_FEED_SECRET"); val != "" {
		c.FeedSecret = val
	}
	if val := getenv("HOMECTL_CONFIG"); val != "" {
		c.ConfigFile = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	setupFlags(flag.CommandLine, &defaultConfig)
}

func setupFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Port, "port", c.Port, "Serial device of the home control device.")
	fs.IntVar(&c.BaudRate, "baud", c.BaudRate, "Baud rate.")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/homectl/")
	fs.StringVar(&c.Info.Ref.ID, "id", c.Info.Ref.ID, "Device ID published on MQTT.")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "Temperature warning threshold.")
	fs.StringVar(&c.Listen, "listen", c.Listen, "Websocket feed listen address, e.g. :8080")
	fs.StringVar(&c.FeedSecret, "feed-secret", c.FeedSecret, "Secret verifying tokens of feed commands.")
	fs.StringVar(&c.ReportLog, "report-log", c.ReportLog, "File to append reports to.")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load loads ConfigFile if specified. Flags explicitly set on the
// command line keep their values.
func (c *Config) Load() error {
	if c.ConfigFile == "" {
		return nil
	}
	return c.LoadFile(c.ConfigFile, ExplicitFlags(flag.CommandLine))
}

// ExplicitFlags returns the names of flags set on the command line.
func ExplicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// LoadFile overlays the YAML file except fields named in keep.
func (c *Config) LoadFile(fn string, keep map[string]bool) error {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return fmt.Errorf("config %s: %v", fn, err)
	}
	c.Apply(&f, keep)
	return nil
}

// Apply overlays non-empty fields of f except those named in keep.
func (c *Config) Apply(f *File, keep map[string]bool) {
	if f.Port != "" && !keep["port"] {
		c.Port = f.Port
	}
	if f.Baud != 0 && !keep["baud"] {
		c.BaudRate = f.Baud
	}
	if f.MQTT != "" && !keep["mqtt"] {
		c.MQTTBrokerURL = f.MQTT
	}
	if f.ID != "" && !keep["id"] {
		c.Info.Ref.ID = f.ID
	}
	if f.Threshold != nil && !keep["threshold"] {
		c.Threshold = *f.Threshold
	}
	if f.Listen != "" && !keep["listen"] {
		c.Listen = f.Listen
	}
	if f.Secret != "" && !keep["feed-secret"] {
		c.FeedSecret = f.Secret
	}
	if f.ReportLog != "" && !keep["report-log"] {
		c.ReportLog = f.ReportLog
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("serial port must be specified")
	}
	if c.BaudRate <= 0 {
		return hal.ErrInvalidBaudRate
	}
	if c.MQTTBrokerURL != "" && !c.Info.Ref.IsValid() {
		return fmt.Errorf("device type and id must be specified")
	}
	return nil
}

// StdioPort is the port name selecting stdin/stdout.
const StdioPort = "-"

// OpenPipe opens Port and wraps it into a Pipe.
func (c *Config) OpenPipe() (*comm.Pipe, error) {
	return OpenPipe(c.Port, c.BaudRate)
}

// OpenPipe opens a serial device, or stdin/stdout for StdioPort,
// as a line Pipe.
func OpenPipe(port string, baud int) (*comm.Pipe, error) {
	if port == StdioPort {
		return comm.NewPipe(stream.NewCloser(hal.Stdio())), nil
	}
	s, err := serial.OpenStream(port, baud)
	if err != nil {
		return nil, err
	}
	return comm.NewPipe(stream.NewCloser(s)), nil
}

// NewMonitor creates a Monitor with the configured threshold.
func (c *Config) NewMonitor() *monitor.Monitor {
	m := monitor.New()
	m.Threshold = c.Threshold
	return m
}

// NewFeed creates the websocket feed, nil if disabled.
func (c *Config) NewFeed(sender l1.CommandSender) *websocket.Feed {
	if c.Listen == "" {
		return nil
	}
	feed := websocket.NewFeed()
	feed.Sender = sender
	if c.FeedSecret != "" {
		feed.Auth = websocket.NewAuthorizer(c.FeedSecret)
	}
	return feed
}

// NewReportLog creates the report log, nil if disabled.
func (c *Config) NewReportLog() *reportlog.Writer {
	if c.ReportLog == "" {
		return nil
	}
	return reportlog.NewRolling(c.ReportLog)
}

// NewBridge creates the MQTT bridge, nil if MQTT is disabled.
func (c *Config) NewBridge(sender l1.CommandSender) (*mqtt.Bridge, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	b, err := mqtt.NewBridge(c.MQTTBrokerURL, c.Info, sender)
	if err != nil {
		return nil, fmt.Errorf("create MQTT bridge error: %v", err)
	}
	return b, nil
}
