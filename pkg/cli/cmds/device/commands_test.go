package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/homectl/pkg/l1/monitor"
)

func TestFormatState(t *testing.T) {
	require.Equal(t, "LAMP: OFF\nPLUG: OFF\nTEMP: -\nDOOR: -", FormatState(monitor.State{}))
	require.Equal(t, "LAMP: ON\nPLUG: OFF\nTEMP: 28.0 WARNING\nDOOR: CLOSED\nREJECTED: 2",
		FormatState(monitor.State{
			Lamp:           true,
			Temperature:    28,
			HasTemperature: true,
			Warning:        true,
			Door:           "CLOSED",
			Rejected:       2,
		}))
}

func TestFormatDoorLog(t *testing.T) {
	base := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	events := []monitor.DoorEvent{
		{Time: base, Status: "CLOSED"},
		{Time: base.Add(time.Second), Status: "OPEN"},
		{Time: base.Add(2 * time.Second), Status: "CLOSED"},
	}
	require.Equal(t, "2020-01-02 03:04:06 OPEN\n2020-01-02 03:04:07 CLOSED", FormatDoorLog(events, 2))
	require.Equal(t, "2020-01-02 03:04:05 CLOSED\n2020-01-02 03:04:06 OPEN\n2020-01-02 03:04:07 CLOSED", FormatDoorLog(events, 0))
	require.Equal(t, "", FormatDoorLog(nil, 5))
}
