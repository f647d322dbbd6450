package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopOrder(t *testing.T) {
	var trace []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			trace = append(trace, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := NewLoop()
	loop.Interval = time.Millisecond
	loop.AddController(PrLvEmit, record("emit"))
	loop.AddController(PrLvInput, record("input"))
	loop.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		if cc.Iteration() == 1 {
			cancel()
		}
		return errors.New("ignored")
	}))
	require.Equal(t, context.Canceled, loop.Run(ctx))
	require.Equal(t, []string{"input", "emit", "input", "emit"}, trace)
}

func TestLoopFirstIterationImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		cancel()
		return nil
	}))
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("first iteration did not run")
	}
}

func TestLoopTriggerNext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		if cc.Iteration() == 2 {
			cancel()
		} else {
			cc.TriggerNext()
		}
		return nil
	}))
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("TriggerNext did not skip the wait")
	}
}

func TestLoopRunnables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan LoopControl, 1)
	loop := NewLoop()
	loop.Interval = time.Millisecond
	loop.AddRunnable(NamedRun("probe", RunFunc(func(ctx context.Context) error {
		started <- LoopCtlFrom(ctx)
		<-ctx.Done()
		return ctx.Err()
	})))
	go func() {
		<-started
		cancel()
	}()
	require.Equal(t, context.Canceled, loop.Run(ctx))
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		RunFunc(func(context.Context) error { return context.Canceled }),
		RunFunc(func(context.Context) error { return errB }),
	)
	err := r.Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.ElementsMatch(t, []error{errA, errB}, agg.Errors)

	require.NoError(t, NewRunner().Go(RunFunc(func(context.Context) error { return nil })).Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("one"))
	require.Equal(t, "one", errs.Aggregate().Error())
	errs.Add(errors.New("two"))
	require.Equal(t, "Multiple errors:\none\ntwo", errs.Aggregate().Error())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var closed int
	closer := closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	})
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)

	closed = 0
	err = RunWithContextCloser(context.Background(), closerFunc(func() error {
		closed++
		return nil
	}), func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closed)
}

func TestRunWithContextCloserNotInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)
	errCh := make(chan error, 1)
	go func() {
		// Close does not unblock fn, like a read on a blocking fd.
		errCh <- RunWithContextCloser(ctx, closerFunc(func() error { return nil }), func() error {
			<-release
			return nil
		})
	}()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("not returned after cancel")
	}
}
