// Package reportlog appends reports as JSON lines to a rolling file.
package reportlog

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/robotalks/homectl/pkg/l1/report"
)

// Rotation defaults.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
)

// Entry is a line in the log.
type Entry struct {
	Time time.Time `json:"time"`
	*report.Report
}

// Writer writes Entries to Out.
type Writer struct {
	Out io.Writer
	Now func() time.Time
	// Kinds filters the reports to log, all when empty.
	Kinds []report.Kind

	lock sync.Mutex
	enc  *json.Encoder
}

// New creates a Writer on out.
func New(out io.Writer) *Writer {
	return &Writer{Out: out, Now: time.Now, enc: json.NewEncoder(out)}
}

// NewRolling creates a Writer on a file rotated by size.
func NewRolling(fn string) *Writer {
	return New(&lumberjack.Logger{
		Filename:   fn,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		LocalTime:  true,
	})
}

func (w *Writer) accept(k report.Kind) bool {
	if len(w.Kinds) == 0 {
		return true
	}
	for _, kind := range w.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// HandleReport implements comm.ReportHandler.
func (w *Writer) HandleReport(_ context.Context, r *report.Report) {
	if !w.accept(r.Kind) {
		return
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	if err := w.enc.Encode(&Entry{Time: w.Now(), Report: r}); err != nil {
		glog.Errorf("report log: %v", err)
	}
}

// Close implements io.Closer.
func (w *Writer) Close() error {
	if closer, ok := w.Out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
