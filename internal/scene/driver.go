package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/seekbot/internal/action"
)

// Driver runs a goal against a Scene in simulated time. It is the server's
// ticker and an observer, so every controller tick happens right after a
// freshly rendered frame pair has been delivered.
type Driver struct {
	scene   *Scene
	period  time.Duration
	clock   time.Time
	ticks   chan time.Time
	stepped chan struct{}
	onFrame func(Pose)
}

func NewDriver(s *Scene, period time.Duration, start time.Time) *Driver {
	return &Driver{
		scene:   s,
		period:  period,
		clock:   start,
		ticks:   make(chan time.Time),
		stepped: make(chan struct{}, 1),
	}
}

// OnFrame registers a callback that sees the pose before each tick.
func (d *Driver) OnFrame(fn func(Pose)) { d.onFrame = fn }

// Ticker is passed to action.WithTicker.
func (d *Driver) Ticker(time.Duration) action.Ticker { return d }

func (d *Driver) C() <-chan time.Time { return d.ticks }
func (d *Driver) Stop()               {}

func (d *Driver) OnTick(action.TickReport) {
	select {
	case d.stepped <- struct{}{}:
	default:
	}
}

func (d *Driver) OnResult(action.ResultReport) {}

// Run feeds frames and ticks until the goal ends, ctx is done, or maxTicks
// elapse, in which case the goal is canceled.
func (d *Driver) Run(ctx context.Context, srv *action.Server, h *action.Handle, maxTicks int) (action.Result, error) {
	for i := 0; i < maxTicks; i++ {
		if d.onFrame != nil {
			d.onFrame(d.scene.Pose())
		}
		dets, depth := d.scene.Render(d.clock)
		srv.OnDetections(dets)
		if err := srv.OnDepth(depth); err != nil {
			return action.Result{}, fmt.Errorf("render depth: %w", err)
		}

		select {
		case d.ticks <- d.clock:
		case <-h.Done():
			return h.Wait(ctx)
		case <-ctx.Done():
			h.Cancel()
			return h.Wait(context.Background())
		}

		select {
		case <-d.stepped:
		case <-h.Done():
			return h.Wait(ctx)
		case <-ctx.Done():
			h.Cancel()
			return h.Wait(context.Background())
		}

		d.scene.Advance(d.period)
		d.clock = d.clock.Add(d.period)
	}
	h.Cancel()
	return h.Wait(ctx)
}
