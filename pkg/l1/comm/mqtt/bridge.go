package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/msgs"
	"github.com/robotalks/homectl/pkg/l1/report"
)

// Bridge publishes the reports of a locally attached device and
// forwards commands received on MQTT to it.
type Bridge struct {
	Queue  *Queue
	Info   l1.DeviceInfo
	Sender l1.CommandSender
	Now    func() time.Time

	metaJSON []byte
}

// NewBridge creates a Bridge.
func NewBridge(brokerURL string, info l1.DeviceInfo, sender l1.CommandSender) (*Bridge, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(info.Ref), nil, 1, true)
	if !strings.Contains(brokerURL, "client-id=") {
		opts.SetClientID("homectl:" + info.Ref.Name())
	}
	b := &Bridge{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		Sender:   sender,
		Now:      time.Now,
		metaJSON: meta,
	}
	b.Queue.OnConnect = func(*Queue) { b.onConnected() }
	return b, nil
}

// HandleReport implements comm.ReportHandler. Temperature and door
// readings are retained so late subscribers see the latest value.
func (b *Bridge) HandleReport(_ context.Context, r *report.Report) {
	if !b.Queue.Client.IsConnected() {
		return
	}
	b.Queue.Pub(LineTopic(b.Info.Ref), []byte(r.Line))
	data, err := (&msgs.Reading{Report: r, Time: b.Now()}).Encode()
	if err != nil {
		glog.Errorf("encode reading: %v", err)
		return
	}
	retain := r.Kind == report.KindTemperature || r.Kind == report.KindDoor
	b.Queue.PubWith(ReportTopic(b.Info.Ref, r.Kind), data, 0, retain)
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(CmdTopic(b.Info.Ref), Handler(b.handleCommand))
	token := b.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	sub.Close()
	b.Queue.PubWith(MetaTopic(b.Info.Ref), nil, 1, true).Wait()
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) onConnected() {
	b.Queue.PubWith(MetaTopic(b.Info.Ref), b.metaJSON, 1, true)
}

func (b *Bridge) handleCommand(_ string, payload []byte) {
	cmd := strings.TrimRight(string(payload), "\r\n")
	glog.V(1).Infof("MQTT command %q", cmd)
	if err := b.Sender.Send(cmd); err != nil {
		glog.Warningf("send command %q: %v", cmd, err)
	}
}
