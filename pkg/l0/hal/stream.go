package hal

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/homectl/pkg/framework"
)

// DefaultFIFODepth is the receive FIFO depth, same as the UART hardware FIFO.
const DefaultFIFODepth = 16

// StreamPort implements Port over an io.ReadWriter.
// Received bytes are buffered in a FIFO filled by Run; when the FIFO
// is full the reader blocks.
type StreamPort struct {
	ReadWriter io.ReadWriter

	baud       int
	format     FrameFormat
	configured bool
	rxCh       chan byte
	writeLock  sync.Mutex
}

// NewStreamPort creates a StreamPort with DefaultFIFODepth.
func NewStreamPort(rw io.ReadWriter) *StreamPort {
	return &StreamPort{ReadWriter: rw, rxCh: make(chan byte, DefaultFIFODepth)}
}

// WithDepth replaces the receive FIFO. Must be called before Run.
func (p *StreamPort) WithDepth(depth int) *StreamPort {
	if depth < 1 {
		depth = 1
	}
	p.rxCh = make(chan byte, depth)
	return p
}

// Configure implements Port.
func (p *StreamPort) Configure(baud int, format FrameFormat) error {
	if baud <= 0 {
		return ErrInvalidBaudRate
	}
	if err := format.Validate(); err != nil {
		return err
	}
	p.baud, p.format, p.configured = baud, format, true
	glog.V(1).Infof("port configured %d %s", baud, format)
	return nil
}

// Settings returns the configured baud rate and frame format.
func (p *StreamPort) Settings() (int, FrameFormat, bool) {
	return p.baud, p.format, p.configured
}

// ByteAvailable implements Port.
func (p *StreamPort) ByteAvailable() bool {
	return len(p.rxCh) > 0
}

// ReadByte implements Port.
func (p *StreamPort) ReadByte() (byte, error) {
	select {
	case b := <-p.rxCh:
		return b, nil
	default:
		return 0, ErrNoData
	}
}

// Write implements Port.
func (p *StreamPort) Write(data []byte) (int, error) {
	if !p.configured {
		return 0, ErrNotConfigured
	}
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	return p.ReadWriter.Write(data)
}

// Run implements Runnable. It fills the receive FIFO until the stream
// ends or ctx is done. End of stream is not an error.
func (p *StreamPort) Run(ctx context.Context) error {
	var err error
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		err = fx.RunWithContextCloser(ctx, closer, func() error { return p.readLoop(ctx) })
	} else {
		err = p.readLoop(ctx)
	}
	if err == io.EOF {
		glog.V(1).Info("port input closed")
		return nil
	}
	return err
}

// AddToLoop implements LoopAdder.
func (p *StreamPort) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("port", p))
}

func (p *StreamPort) readLoop(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := p.ReadWriter.Read(buf)
		for _, b := range buf[:n] {
			select {
			case p.rxCh <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			return err
		}
	}
}
