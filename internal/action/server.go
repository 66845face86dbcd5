package action

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
)

const (
	DefaultTickRate       = 2.0
	DefaultFeedbackBuffer = 32
)

// Config is fixed for the lifetime of a Server.
type Config struct {
	TickRate       float64
	Params         servo.Params
	Fusion         fusion.Config
	FeedbackBuffer int
}

func DefaultConfig() Config {
	return Config{
		TickRate:       DefaultTickRate,
		Params:         servo.DefaultParams(),
		Fusion:         fusion.DefaultConfig(),
		FeedbackBuffer: DefaultFeedbackBuffer,
	}
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %f", c.TickRate)
	}
	return c.Params.Validate()
}

// Period returns the tick period.
func (c Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTicker replaces the wall-clock ticker, mainly for tests.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(s *Server) { s.newTicker = fn }
}

func WithObserver(o Observer) Option {
	return func(s *Server) { s.observers = append(s.observers, o) }
}

// Server runs at most one goal at a time.
type Server struct {
	validator *vocab.Validator
	sink      VelocitySink
	cfg       Config
	logger    *log.Logger
	newTicker func(time.Duration) Ticker
	observers []Observer

	mu         sync.Mutex
	active     *Handle
	wg         sync.WaitGroup
	executions atomic.Int64
}

func NewServer(validator *vocab.Validator, sink VelocitySink, cfg Config, opts ...Option) (*Server, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("velocity sink is required")
	}
	if cfg.FeedbackBuffer <= 0 {
		cfg.FeedbackBuffer = DefaultFeedbackBuffer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		validator: validator,
		sink:      sink,
		cfg:       cfg,
		logger:    log.New(io.Discard, "", 0),
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit validates requested and starts executing it. The goal runs until it
// reaches a terminal state, it is canceled, or ctx is done. Rejections return
// a *vocab.RejectedError and start nothing.
func (s *Server) Submit(ctx context.Context, requested string) (*Handle, error) {
	goal, err := s.validator.Accept(requested)
	if err != nil {
		s.logger.Printf("goal %q: %s -> %s: %v", requested, Pending, Rejected, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		err := &vocab.RejectedError{Requested: requested, Wrapped: ErrBusy}
		s.logger.Printf("goal %q: %s -> %s: %v", requested, Pending, Rejected, err)
		return nil, err
	}

	h := newHandle(uuid.NewString(), goal, s.cfg.FeedbackBuffer)
	h.fuser = fusion.NewFuser(goal.ClassID, h.target, s.cfg.Fusion, s.logger)
	s.logger.Printf("goal %s: %s -> %s: looking for %s", h.ID, Pending, Accepted, goal)
	s.active = h
	s.wg.Add(1)
	s.executions.Add(1)
	go s.execute(ctx, h)
	return h, nil
}

// Active returns the executing goal, or nil.
func (s *Server) Active() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Executions returns how many execution loops have been started.
func (s *Server) Executions() int64 { return s.executions.Load() }

// Wait blocks until every started goal has finished.
func (s *Server) Wait() { s.wg.Wait() }

// OnDetections forwards a detection frame to the active goal.
func (s *Server) OnDetections(frame fusion.DetectionFrame) {
	if h := s.Active(); h != nil {
		h.fuser.AddDetections(frame)
	}
}

// OnDepth forwards a depth frame to the active goal. The error is the
// fuser's *fusion.FusionError for a rejected frame.
func (s *Server) OnDepth(frame *fusion.DepthFrame) error {
	if h := s.Active(); h != nil {
		return h.fuser.AddDepth(frame)
	}
	return nil
}

func (s *Server) execute(ctx context.Context, h *Handle) {
	defer s.wg.Done()

	p := s.cfg.Params
	machine := servo.NewMachine(p)
	loss := servo.NewHysteresis(p.LostTickThreshold)
	velocity := servo.NewVelocityController(p)

	ticker := s.newTicker(s.cfg.Period())
	defer ticker.Stop()

	h.status.Store(int32(Executing))
	s.logger.Printf("goal %s: %s -> %s", h.ID, Accepted, Executing)

	tick := 0
	for {
		var now time.Time
		select {
		case <-h.cancel:
			s.finish(h, tick, Result{Status: Canceled, Message: "Goal canceled", Err: ErrCanceled}, true)
			return
		case <-ctx.Done():
			s.finish(h, tick, Result{Status: Canceled, Message: "Goal canceled: shutting down", Err: ctx.Err()}, true)
			return
		case now = <-ticker.C():
		}

		if h.cancelRequested() {
			s.finish(h, tick, Result{Status: Canceled, Message: "Goal canceled", Err: ErrCanceled}, true)
			return
		}
		tick++

		obs := h.target.Snapshot()
		event := loss.Observe(obs.Detected)
		if event == servo.LossLost && p.LossPolicy == servo.LossAbort && machine.State() != servo.Searching {
			s.publish(servo.Stop)
			h.emit(event.String())
			s.notifyTick(TickReport{
				GoalID: h.ID, Goal: h.Goal, Tick: tick, Time: now, Observation: obs,
				Step: servo.Step{From: machine.State(), To: machine.State()}, Loss: event,
				Command: servo.Stop, Feedback: event.String(),
			})
			s.finish(h, tick, Result{Status: Aborted, Message: "Tracking Failed", Err: servo.ErrTrackingLost}, false)
			return
		}

		step := machine.Tick(obs)
		cmd := velocity.Command(step.Output)
		s.publish(cmd)

		line := servo.Feedback(step, obs, event, p)
		h.emit(line)
		if step.Transitioned() {
			s.logger.Printf("goal %s: tick %d %s -> %s", h.ID, tick, step.From, step.To)
		}
		s.notifyTick(TickReport{
			GoalID: h.ID, Goal: h.Goal, Tick: tick, Time: now, Observation: obs,
			Step: step, Loss: event, Command: cmd, Feedback: line,
		})

		if step.Done() {
			// The HALTED tick already published the final zero command.
			s.finish(h, tick, Result{Status: Succeeded, Message: "Tracking Successful"}, false)
			return
		}
	}
}

// finish publishes the terminal zero command when stop is set, releases the
// server for the next goal and delivers the result. Observers see the result
// before the handle does.
func (s *Server) finish(h *Handle, ticks int, res Result, stop bool) {
	if stop {
		s.publish(servo.Stop)
	}
	h.status.Store(int32(res.Status))

	s.mu.Lock()
	if s.active == h {
		s.active = nil
	}
	s.mu.Unlock()

	s.logger.Printf("goal %s: %s -> %s after %d ticks: %s", h.ID, Executing, res.Status, ticks, res.Message)
	report := ResultReport{
		GoalID: h.ID, Goal: h.Goal, Accepted: h.Accepted, Finished: time.Now(),
		Ticks: ticks, Result: res,
	}
	for _, o := range s.observers {
		o.OnResult(report)
	}

	close(h.feedback)
	h.final = res
	h.result <- res
	close(h.done)
}

func (s *Server) publish(cmd servo.Command) {
	if err := s.sink.Publish(cmd); err != nil {
		s.logger.Printf("publish %s: %v", cmd, err)
	}
}

func (s *Server) notifyTick(r TickReport) {
	for _, o := range s.observers {
		o.OnTick(r)
	}
}
