package action

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/vocab"
)

// Handle is the caller's view of one accepted goal.
type Handle struct {
	ID       string
	Goal     vocab.Goal
	Accepted time.Time

	target *fusion.TargetState
	fuser  *fusion.Fuser

	status     atomic.Int32
	feedback   chan string
	result     chan Result
	final      Result
	done       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
}

func newHandle(id string, goal vocab.Goal, feedbackBuffer int) *Handle {
	h := &Handle{
		ID:       id,
		Goal:     goal,
		Accepted: time.Now(),
		target:   fusion.NewTargetState(),
		feedback: make(chan string, feedbackBuffer),
		result:   make(chan Result, 1),
		done:     make(chan struct{}),
		cancel:   make(chan struct{}),
	}
	h.status.Store(int32(Accepted))
	return h
}

// Feedback streams one line per tick. It is closed before the result is sent.
// Lines are dropped oldest-first when the reader falls behind.
func (h *Handle) Feedback() <-chan string { return h.feedback }

// Result delivers the terminal outcome exactly once.
func (h *Handle) Result() <-chan Result { return h.result }

// Done is closed once the result is available.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Status() Status { return Status(h.status.Load()) }

// Cancel requests cooperative termination. Repeated calls before the goal
// finishes are no-ops.
func (h *Handle) Cancel() error {
	if h.Status().Terminal() {
		return ErrGoalFinished
	}
	h.cancelOnce.Do(func() { close(h.cancel) })
	return nil
}

// Wait blocks until the goal finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.final, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Observation returns the latest fused observation of the goal.
func (h *Handle) Observation() fusion.Observation { return h.target.Snapshot() }

// FusionStats returns the fuser counters of the goal.
func (h *Handle) FusionStats() fusion.Stats { return h.fuser.Stats() }

func (h *Handle) cancelRequested() bool {
	select {
	case <-h.cancel:
		return true
	default:
		return false
	}
}

func (h *Handle) emit(line string) {
	select {
	case h.feedback <- line:
		return
	default:
	}
	select {
	case <-h.feedback:
	default:
	}
	select {
	case h.feedback <- line:
	default:
	}
}
