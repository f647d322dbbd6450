package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Controller defines the logic executed once per loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Iteration is the zero-based index of the current iteration.
	Iteration() uint64
	// PriorityLevel gets the current priority level.
	PriorityLevel() int

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration, skipping the wait.
	TriggerNext()
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Predefine priority levels. Controllers at a lower level
// run earlier in the same iteration.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvInput is the level draining serial input.
	PrLvInput = PrLvHigh
	// PrLvDispatch is the level handling completed commands.
	PrLvDispatch = PrLvNormal
	// PrLvEmit is the level writing periodic output.
	PrLvEmit = PrLvLow
)
