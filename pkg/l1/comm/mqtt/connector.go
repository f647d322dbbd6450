package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/homectl/pkg/l1"
)

// Connector implements l1.Connector for devices published by a Bridge.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// ParseMetaTopic extracts the device ref from a metadata topic.
func ParseMetaTopic(topic string) (ref l1.DeviceRef, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != "meta" {
		return
	}
	ref = l1.DeviceRef{Type: items[0], ID: items[1]}
	return ref, ref.IsValid()
}

// Discover implements Connector. Devices with cleared metadata are skipped.
func (c *Connector) Discover(ctx context.Context) (res []l1.DeviceInfo, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	resCh := make(chan l1.DeviceInfo, 1)
	q.Sub(MetaPattern, Handler(func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok || len(payload) == 0 {
			return
		}
		info := l1.DeviceInfo{Ref: ref}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("bad metadata of %s: %v", ref.Name(), err)
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	q := NewQueue(c.options, c.topicPrefix)
	conn := &DeviceConn{ReadWriter: NewLineReadWriter(q).ForHost(ref).Start()}
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		return nil, token.Error()
	}
	return conn, nil
}

// DeviceConn is a device reached through MQTT.
type DeviceConn struct {
	*ReadWriter
}

// Send implements l1.CommandSender.
func (c *DeviceConn) Send(cmd string) error {
	return c.WriteLine(cmd)
}

// Close implements io.Closer.
func (c *DeviceConn) Close() error {
	err := c.ReadWriter.Close()
	c.Queue.Close()
	return err
}
