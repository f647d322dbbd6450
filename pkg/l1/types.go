package l1

import (
	"context"
)

// DeviceRef is a reference to a home control device.
type DeviceRef struct {
	// Type is the device type.
	Type string `yaml:"type"`
	// ID is unique ID of the device.
	ID string `yaml:"id"`
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides metadata for a device.
type DeviceMeta struct {
	Description string            `json:"description,omitempty" yaml:"description"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels"`
}

// DeviceInfo provides information of a device.
type DeviceInfo struct {
	Ref  DeviceRef  `yaml:"ref"`
	Meta DeviceMeta `yaml:"meta"`
}

// CommandSender sends a command line to a device.
type CommandSender interface {
	Send(cmd string) error
}

// Connector is used by host tools to reach a device
// through a registry.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, DeviceRef) (DeviceConn, error)
}

// DeviceConn is the connection to a device: commands go out,
// output lines come back.
type DeviceConn interface {
	CommandSender
	ReadLine() (string, error)
	Close() error
}
