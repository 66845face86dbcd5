package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
)

func TestDogScenarioSucceeds(t *testing.T) {
	h := newHarness(t, nil)

	g, err := h.server.Submit(context.Background(), "dog")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if g.Goal.ClassID != 16 {
		t.Fatalf("expected class id 16, got %d", g.Goal.ClassID)
	}

	h.see(16, 320, 240, 180)

	var feedback []string
	for i := 0; i < 3; i++ {
		feedback = append(feedback, h.tick(g))
	}

	res := h.result(g)
	if res.Status != Succeeded || res.Message != "Tracking Successful" {
		t.Fatalf("expected success, got %v", res)
	}

	if diff := cmp.Diff([]string{"center", "center", "Target reached"}, feedback); diff != "" {
		t.Errorf("feedback mismatch (-want +got):\n%s", diff)
	}

	want := []servo.Command{
		{Linear: 0.05, Angular: -1.0},
		{Linear: 0.05, Angular: 0},
		servo.Stop,
	}
	if diff := cmp.Diff(want, h.sink.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	var states []servo.State
	for _, r := range h.observer.ticks {
		states = append(states, r.Step.To)
	}
	if diff := cmp.Diff([]servo.State{servo.Tracking, servo.Approaching, servo.Halted}, states); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}

	if _, ok := <-g.Feedback(); ok {
		t.Error("feedback should be closed after the result")
	}
	if g.Status() != Succeeded {
		t.Errorf("expected SUCCEEDED, got %s", g.Status())
	}
	if h.server.Active() != nil {
		t.Error("server should be idle after the result")
	}
}

func TestUnknownClassRejected(t *testing.T) {
	h := newHarness(t, nil)

	for _, name := range []string{"dragon", "", "unicorn"} {
		g, err := h.server.Submit(context.Background(), name)
		if g != nil {
			t.Fatalf("%q: expected no handle", name)
		}
		if !errors.Is(err, vocab.ErrUnknownClass) {
			t.Fatalf("%q: expected ErrUnknownClass, got %v", name, err)
		}
	}

	// Frames arriving with no goal must go nowhere.
	h.server.OnDetections(fusion.DetectionFrame{Stamp: time.Now()})

	if h.server.Executions() != 0 {
		t.Errorf("expected no execution loop, got %d", h.server.Executions())
	}
	if h.server.Active() != nil {
		t.Error("rejected goal must not become active")
	}
	if n := len(h.sink.Commands()); n != 0 {
		t.Errorf("expected no velocity publish, got %d", n)
	}
}

func TestCancelTwiceYieldsOneResult(t *testing.T) {
	h := newHarness(t, nil)

	g, err := h.server.Submit(context.Background(), "cat")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.see(15, 500, 240, 2000)
	h.tick(g)

	if err := g.Cancel(); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := g.Cancel(); err != nil && !errors.Is(err, ErrGoalFinished) {
		t.Fatalf("second cancel: %v", err)
	}

	res := h.result(g)
	if res.Status != Canceled || !errors.Is(res.Err, ErrCanceled) {
		t.Fatalf("expected CANCELED, got %v", res)
	}
	<-g.Done()

	select {
	case extra := <-g.Result():
		t.Fatalf("unexpected second result %v", extra)
	default:
	}

	cmds := h.sink.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected one tick command and one stop, got %v", cmds)
	}
	if !cmds[1].IsZero() || cmds[0].IsZero() {
		t.Errorf("expected exactly one trailing zero command, got %v", cmds)
	}
	if err := g.Cancel(); !errors.Is(err, ErrGoalFinished) {
		t.Errorf("cancel after finish: expected ErrGoalFinished, got %v", err)
	}
}

func TestLossAbortsAfterThreshold(t *testing.T) {
	h := newHarness(t, nil)

	g, err := h.server.Submit(context.Background(), "person")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.see(0, 500, 240, 2000)
	if fb := h.tick(g); fb != "right" {
		t.Fatalf("expected right, got %q", fb)
	}

	h.miss()
	for n := 1; n <= 5; n++ {
		if fb := h.tick(g); fb != "Lost object temporarily" {
			t.Fatalf("miss %d: expected temporary loss, got %q", n, fb)
		}
	}
	if fb := h.tick(g); fb != "Lost object" {
		t.Fatalf("miss 6: expected Lost object, got %q", fb)
	}

	res := h.result(g)
	if res.Status != Aborted || res.Message != "Tracking Failed" || !errors.Is(res.Err, servo.ErrTrackingLost) {
		t.Fatalf("expected ABORTED Tracking Failed, got %v", res)
	}

	cmds := h.sink.Commands()
	if len(cmds) != 7 {
		t.Fatalf("expected 7 commands, got %d", len(cmds))
	}
	zeros := 0
	for _, c := range cmds {
		if c.IsZero() {
			zeros++
		}
	}
	if zeros != 1 || !cmds[len(cmds)-1].IsZero() {
		t.Errorf("expected a single final zero command, got %v", cmds)
	}
}

func TestLossReportPolicyKeepsRunning(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.Params.LossPolicy = servo.LossReport })

	g, err := h.server.Submit(context.Background(), "person")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.see(0, 500, 240, 2000)
	h.tick(g)
	h.miss()
	for n := 1; n <= 5; n++ {
		h.tick(g)
	}
	if fb := h.tick(g); fb != "Lost object" {
		t.Fatalf("expected Lost object, got %q", fb)
	}
	if fb := h.tick(g); fb != "Lost object temporarily" {
		t.Fatalf("counter should restart, got %q", fb)
	}
	if g.Status() != Executing {
		t.Fatalf("report policy should keep executing, got %s", g.Status())
	}

	g.Cancel()
	if res := h.result(g); res.Status != Canceled {
		t.Errorf("expected CANCELED, got %v", res)
	}
}

func TestSearchingNeverAbortsOnMisses(t *testing.T) {
	h := newHarness(t, nil)

	g, err := h.server.Submit(context.Background(), "bottle")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.miss()
	for i := 0; i < 10; i++ {
		if fb := h.tick(g); fb != "Searching" {
			t.Fatalf("tick %d: expected Searching, got %q", i, fb)
		}
	}
	g.Cancel()
	h.result(g)
}

func TestBusyWhileExecuting(t *testing.T) {
	h := newHarness(t, nil)

	first, err := h.server.Submit(context.Background(), "dog")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := h.server.Submit(context.Background(), "cat"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	first.Cancel()
	h.result(first)

	second, err := h.server.Submit(context.Background(), "cat")
	if err != nil {
		t.Fatalf("submit after terminal state: %v", err)
	}
	if second.ID == first.ID {
		t.Error("goal ids must be unique")
	}
	second.Cancel()
	h.result(second)
	h.server.Wait()

	if h.server.Executions() != 2 {
		t.Errorf("expected 2 executions, got %d", h.server.Executions())
	}
}

func TestContextCancelStopsGoal(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	g, err := h.server.Submit(ctx, "dog")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancel()

	res, err := g.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Status != Canceled || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected CANCELED from context, got %v", res)
	}
	if diff := cmp.Diff([]servo.Command{servo.Stop}, h.sink.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if len(h.observer.results) != 1 {
		t.Errorf("expected one result report, got %d", len(h.observer.results))
	}
}

func TestOnDepthRejectsBadEncoding(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.server.OnDepth(&fusion.DepthFrame{Encoding: "rgb8"}); err != nil {
		t.Errorf("no active goal: frame should be dropped silently, got %v", err)
	}

	g, err := h.server.Submit(context.Background(), "dog")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	err = h.server.OnDepth(&fusion.DepthFrame{Width: 2, Height: 2, Encoding: "rgb8", Data: make([]byte, 12)})
	if !errors.Is(err, fusion.ErrUnsupportedEncoding) {
		t.Errorf("expected ErrUnsupportedEncoding, got %v", err)
	}
	if fb := h.tick(g); fb != "Searching" {
		t.Errorf("bad frame must not change the observation, got %q", fb)
	}
	if g.FusionStats().Rejected != 1 {
		t.Errorf("expected one rejected frame, got %+v", g.FusionStats())
	}
	g.Cancel()
	h.result(g)
}

func TestNewServerValidates(t *testing.T) {
	v := vocab.NewValidator(vocab.COCO())
	sink := &recordingSink{}

	if _, err := NewServer(nil, sink, DefaultConfig()); err == nil {
		t.Error("expected error without validator")
	}
	if _, err := NewServer(v, nil, DefaultConfig()); err == nil {
		t.Error("expected error without sink")
	}
	cfg := DefaultConfig()
	cfg.TickRate = 0
	if _, err := NewServer(v, sink, cfg); err == nil {
		t.Error("expected error for zero tick rate")
	}
}

func TestPeriod(t *testing.T) {
	if p := DefaultConfig().Period(); p != 500*time.Millisecond {
		t.Errorf("expected 500ms at 2Hz, got %v", p)
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	a := &recordingSink{}
	boom := errors.New("boom")
	m := MultiSink{a, SinkFunc(func(servo.Command) error { return boom })}

	err := m.Publish(servo.Command{Linear: 0.1})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(a.Commands()) != 1 {
		t.Error("first sink should still receive the command")
	}
}
