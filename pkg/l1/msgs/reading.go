package msgs

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/homectl/pkg/l1/report"
)

// Field names of an encoded reading.
const (
	FieldKind        = "kind"
	FieldLine        = "line"
	FieldTime        = "time_ms"
	FieldTemperature = "temperature"
	FieldDoor        = "door"
	FieldCommand     = "command"
)

// ErrMissingField indicates a decoded reading lacks a required field.
var ErrMissingField = errors.New("missing field")

// Reading is a report observed at a point in time.
type Reading struct {
	Report *report.Report
	Time   time.Time
}

// Encode serializes the reading.
func (r *Reading) Encode() ([]byte, error) {
	return proto.Marshal(r.Struct())
}

// Struct converts the reading into a protobuf Struct.
func (r *Reading) Struct() *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldKind: stringValue(r.Report.Kind.String()),
		FieldLine: stringValue(r.Report.Line),
		FieldTime: numberValue(float64(r.Time.UnixNano() / int64(time.Millisecond))),
	}}
	switch r.Report.Kind {
	case report.KindTemperature:
		s.Fields[FieldTemperature] = numberValue(r.Report.Temperature)
	case report.KindDoor:
		s.Fields[FieldDoor] = stringValue(r.Report.Door)
	case report.KindAck:
		s.Fields[FieldCommand] = stringValue(r.Report.Command)
	}
	return s
}

// DecodeReading is the reverse of Reading.Encode.
func DecodeReading(data []byte) (*Reading, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	kindVal, ok := s.Fields[FieldKind]
	if !ok {
		return nil, fmt.Errorf("%v: %s", ErrMissingField, FieldKind)
	}
	kind, err := report.ParseKind(kindVal.GetStringValue())
	if err != nil {
		return nil, err
	}
	r := &Reading{Report: &report.Report{
		Kind:        kind,
		Line:        s.Fields[FieldLine].GetStringValue(),
		Temperature: s.Fields[FieldTemperature].GetNumberValue(),
		Door:        s.Fields[FieldDoor].GetStringValue(),
		Command:     s.Fields[FieldCommand].GetStringValue(),
	}}
	if ms, ok := s.Fields[FieldTime]; ok {
		r.Time = time.Unix(0, int64(ms.GetNumberValue())*int64(time.Millisecond))
	}
	return r, nil
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}
