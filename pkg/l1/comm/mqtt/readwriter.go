package mqtt

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/comm"
)

// ReadWriter implements LineReadWriter on MQTT topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	lineCh    chan string
	done      chan struct{}
	sub       *Subscription
	closeOnce sync.Once
}

// NewLineReadWriter creates the ReadWriter.
func NewLineReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:  q,
		lineCh: make(chan string, 16),
		done:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForHost sets topics used by host tools talking to a bridged device:
// SubTopic = TYPE/ID/line
// PubTopic = TYPE/ID/cmd
func (p *ReadWriter) ForHost(ref l1.DeviceRef) *ReadWriter {
	return p.WithTopics(LineTopic(ref), CmdTopic(ref))
}

// Start subscribes SubTopic. Subsequent calls are no-op.
func (p *ReadWriter) Start() *ReadWriter {
	if p.sub == nil {
		p.sub = p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	}
	return p
}

// ReadLine implements LineReader.
func (p *ReadWriter) ReadLine() (string, error) {
	select {
	case l := <-p.lineCh:
		return l, nil
	case <-p.done:
		return "", io.EOF
	}
}

// WriteLine implements LineWriter.
func (p *ReadWriter) WriteLine(l string) error {
	if strings.ContainsAny(l, "\r\n") {
		return comm.ErrInvalidLine
	}
	token := p.Queue.Pub(p.PubTopic, []byte(l))
	token.Wait()
	return token.Error()
}

// Close implements io.Closer. Pending ReadLine returns io.EOF.
func (p *ReadWriter) Close() (err error) {
	p.closeOnce.Do(func() {
		close(p.done)
		if p.sub != nil {
			err = p.sub.Close()
		}
	})
	return
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	p.Start()
	defer p.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.lineCh <- string(payload):
	case <-p.done:
	}
}
