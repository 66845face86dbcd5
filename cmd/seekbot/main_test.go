package main

import (
	"context"
	"testing"
	"time"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
	"github.com/spf13/cobra"
)

func newTestServer(t *testing.T) *action.Server {
	t.Helper()
	srv, err := action.NewServer(vocab.NewValidator(vocab.COCO()),
		action.SinkFunc(func(servo.Command) error { return nil }), action.DefaultConfig())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addControllerFlags(cmd)
	if err := cmd.Flags().Set("hz", "4"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("loss-policy", "report"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickHz != 4 {
		t.Errorf("expected tick_hz 4, got %f", cfg.TickHz)
	}
	if cfg.Controller.LossPolicy != servo.LossReport {
		t.Errorf("expected report policy, got %s", cfg.Controller.LossPolicy)
	}
	if cfg.Controller.DepthTarget != servo.DefaultDepthTarget {
		t.Errorf("unchanged flag overrode depth target: %f", cfg.Controller.DepthTarget)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addControllerFlags(cmd)
	cmd.Flags().Set("feedback", "compass5")
	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected error for unknown feedback style")
	}

	preset = "nope"
	defer func() { preset = "" }()
	if _, err := loadConfig(&cobra.Command{Use: "test"}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestHandleCommand(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	if handleCommand(ctx, srv, "dragon") {
		t.Fatal("rejected goal should not exit")
	}
	if srv.Active() != nil {
		t.Fatal("rejected goal started executing")
	}

	handleCommand(ctx, srv, "dog")
	h := srv.Active()
	if h == nil {
		t.Fatal("dog goal not active")
	}

	handleCommand(ctx, srv, "cancel")
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := h.Wait(waitCtx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Status != action.Canceled {
		t.Errorf("expected CANCELED, got %s", res.Status)
	}

	if handleCommand(ctx, srv, "cancel") {
		t.Error("cancel with no goal should not exit")
	}
	if !handleCommand(ctx, srv, "QUIT") {
		t.Error("quit should exit")
	}
}

func TestLostCancelerOnlyCancelsOnLoss(t *testing.T) {
	srv := newTestServer(t)
	h, err := srv.Submit(context.Background(), "cup")
	if err != nil {
		t.Fatal(err)
	}
	lc := lostCanceler(srv.Active)

	lc.OnTick(action.TickReport{GoalID: h.ID, Loss: servo.LossTemporary})
	select {
	case <-h.Done():
		t.Fatal("temporary loss canceled the goal")
	case <-time.After(50 * time.Millisecond):
	}

	lc.OnTick(action.TickReport{GoalID: h.ID, Loss: servo.LossLost})
	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != action.Canceled {
		t.Errorf("expected CANCELED, got %s", res.Status)
	}
}
