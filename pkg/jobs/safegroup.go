package jobs

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/babysh/babysh/pkg/logger"
)

// SafeGroup wraps errgroup.Group with panic recovery so a misbehaving
// waiter goroutine can never take the interactive loop down with it.
type SafeGroup struct {
	group  errgroup.Group
	logger logger.Logger
}

// NewSafeGroup creates a new SafeGroup with panic recovery
func NewSafeGroup(log logger.Logger) *SafeGroup {
	return &SafeGroup{logger: log}
}

// Go runs the given function in a new goroutine with panic recovery.
// Any panic is converted to an error and logged with a stack trace.
func (sg *SafeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Waiter goroutine panic recovered",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("goroutine panic: %v", r)
			}
		}()

		return fn()
	})
}

// Wait blocks until all goroutines have completed, returning the first
// error encountered.
func (sg *SafeGroup) Wait() error {
	return sg.group.Wait()
}
