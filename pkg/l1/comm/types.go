package comm

import (
	"context"
	"errors"

	"github.com/robotalks/homectl/pkg/l1/report"
)

// LineReader reads newline-terminated lines, without the terminator.
type LineReader interface {
	ReadLine() (string, error)
}

// LineWriter writes a line, appending the terminator.
type LineWriter interface {
	WriteLine(string) error
}

// LineReadWriter reads/writes lines.
type LineReadWriter interface {
	LineReader
	LineWriter
}

// ReportHandler is called for every report read from a device.
type ReportHandler interface {
	HandleReport(context.Context, *report.Report)
}

// HandleReportFunc is func type of ReportHandler.
type HandleReportFunc func(context.Context, *report.Report)

// HandleReport implements ReportHandler.
func (f HandleReportFunc) HandleReport(ctx context.Context, r *report.Report) {
	f(ctx, r)
}

// ErrInvalidLine indicates a line to write contains a terminator.
var ErrInvalidLine = errors.New("line contains terminator")
