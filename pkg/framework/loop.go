package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the wait between iterations when Loop.Interval is unset.
const DefaultInterval = time.Second

// Loop runs controllers in a fixed order, then waits for Interval
// before starting the next iteration. The wait always follows the work,
// so the first iteration starts as soon as Run is called.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	wakeUpCh    chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtl struct {
	*Loop
}

type loopIteration struct {
	loopCtl
	ctx           context.Context
	time          time.Time
	index         uint64
	priorityLevel int
}

var (
	loopCtxKey = &Loop{}
)

// LoopCtlFrom gets LoopControl from context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It returns when ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, &loopCtl{l}))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	for n := uint64(0); ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.runIteration(ctx, n)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-l.wakeUpCh:
			timer.Stop()
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) runIteration(ctx context.Context, n uint64) {
	iter := &loopIteration{loopCtl: loopCtl{l}, time: time.Now(), index: n}
	iter.ctx = context.WithValue(ctx, loopCtxKey, iter)
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Iteration() uint64 {
	return t.index
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}
