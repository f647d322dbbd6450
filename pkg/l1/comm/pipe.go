package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l0/line"
	"github.com/robotalks/homectl/pkg/l1/report"
)

// Pipe connects host side handlers to a device: it sends commands
// and turns every line the device writes into a report.
type Pipe struct {
	ReadWriter LineReadWriter
	Handlers   []ReportHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given LineReadWriter.
func NewPipe(rw LineReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// AddHandler appends report handlers. Must be called before Run.
func (p *Pipe) AddHandler(handlers ...ReportHandler) *Pipe {
	p.Handlers = append(p.Handlers, handlers...)
	return p
}

// Send implements l1.CommandSender. Commands longer than the device
// line buffer are sent anyway and truncated by the device.
func (p *Pipe) Send(cmd string) error {
	if len(cmd) > line.MaxLength {
		glog.Warningf("command %q longer than %d bytes will be truncated", cmd, line.MaxLength)
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WriteLine(cmd)
}

// Run implements Runnable. It returns nil when the device stream ends.
func (p *Pipe) Run(ctx context.Context) error {
	var err error
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		err = fx.RunWithContextCloser(ctx, closer, func() error { return p.readLoop(ctx) })
	} else {
		err = p.readLoop(ctx)
	}
	if err == io.EOF {
		return nil
	}
	return err
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(fx.NamedRun("pipe", p))
}

func (p *Pipe) readLoop(ctx context.Context) error {
	for {
		l, err := p.ReadWriter.ReadLine()
		if err != nil {
			return err
		}
		r, err := report.Parse(l)
		if err != nil {
			glog.Warningf("%v", err)
			continue
		}
		glog.V(3).Infof("report %s %q", r.Kind, r.Line)
		for _, h := range p.Handlers {
			h.HandleReport(ctx, r)
		}
	}
}
