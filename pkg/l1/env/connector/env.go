// Package connector sets up connections from host tools to devices
// published through a registry.
package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/comm/mqtt"
	"github.com/robotalks/homectl/pkg/l1/env"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.DeviceRef

	// RegistryURL specifies the URL of device registry.
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.DeviceRef{Type: env.DeviceType},
	RegistryURL: "mqtt://localhost:1883/" + mqtt.DefaultTopicPrefix,
}

func init() {
	if val := os.Getenv("HOMECTL_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("HOMECTL_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("HOMECTL_MQTT_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "device-type", defaultConfig.Ref.Type, "Device type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Device registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "tcp", "ssl", "ws", "wss":
		return mqtt.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// Connect directly connects to the configured device.
func (c *Config) Connect(ctx context.Context) (l1.DeviceConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
