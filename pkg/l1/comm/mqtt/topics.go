package mqtt

import (
	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/report"
)

// Topics relative to the queue prefix, all under the device name:
//
//	TYPE/ID/meta           retained device metadata, cleared on disconnect
//	TYPE/ID/line           every raw line written by the device
//	TYPE/ID/report/KIND    encoded msgs.Reading per report kind
//	TYPE/ID/cmd            command lines to send to the device

// MetaTopic is the topic of device metadata.
func MetaTopic(ref l1.DeviceRef) string {
	return ref.Name() + "/meta"
}

// LineTopic is the topic of raw device output.
func LineTopic(ref l1.DeviceRef) string {
	return ref.Name() + "/line"
}

// CmdTopic is the topic commands are received on.
func CmdTopic(ref l1.DeviceRef) string {
	return ref.Name() + "/cmd"
}

// ReportTopic is the topic of readings of kind.
func ReportTopic(ref l1.DeviceRef, kind report.Kind) string {
	return ref.Name() + "/report/" + kind.String()
}

// MetaPattern matches the metadata topics of all devices.
const MetaPattern = "+/+/meta"
