package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
)

func tick(n int, to servo.State, feedback string) action.TickReport {
	return action.TickReport{
		GoalID:      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Goal:        vocab.Goal{RequestedClass: "dog", ClassID: 16},
		Tick:        n,
		Observation: fusion.Observation{Detected: true, BBoxX: 320, BBoxY: 240, DepthM: 1.2, DepthValid: true},
		Step:        servo.Step{From: servo.Tracking, To: to},
		Command:     servo.Command{Linear: 0.05},
		Feedback:    feedback,
	}
}

func TestFeedDeliversTicksBeforeResult(t *testing.T) {
	f := NewFeed(2)
	f.OnTick(tick(1, servo.Tracking, "a"))
	f.OnTick(tick(2, servo.Tracking, "b"))
	f.OnTick(tick(3, servo.Approaching, "c"))
	f.OnResult(action.ResultReport{Result: action.Result{Status: action.Succeeded}})

	first, ok := f.Next().(TickMsg)
	if !ok || first.Tick != 2 {
		t.Fatalf("expected tick 2 after overflow, got %+v", first)
	}
	if second, ok := f.Next().(TickMsg); !ok || second.Tick != 3 {
		t.Fatalf("expected tick 3, got %+v", second)
	}
	if _, ok := f.Next().(ResultMsg); !ok {
		t.Fatal("expected the result last")
	}
}

func TestMonitorTracksTicks(t *testing.T) {
	m := NewMonitor(NewFeed(4), nil)

	model, cmd := m.Update(TickMsg(tick(1, servo.Approaching, "center")))
	if cmd == nil {
		t.Error("monitor should keep waiting for reports")
	}
	m = model.(Monitor)
	view := m.View()
	for _, want := range []string{"APPROACHING", "1.200 m", "center"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	model, cmd = m.Update(ResultMsg(action.ResultReport{Result: action.Result{Status: action.Succeeded, Message: "Tracking Successful"}}))
	m = model.(Monitor)
	if cmd != nil {
		t.Error("no more reports after the result")
	}
	if res, ok := m.Result(); !ok || res.Result.Status != action.Succeeded {
		t.Errorf("unexpected result %+v", res)
	}
	if !strings.Contains(m.View(), "Tracking Successful") {
		t.Error("view should show the result")
	}

	model, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if model.(Monitor).View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestPrinterFiltersQuietTicks(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	quiet := tick(1, servo.Tracking, "left")
	p.OnTick(quiet)
	if buf.Len() != 0 {
		t.Errorf("unchanged state should not print, got %q", buf.String())
	}

	p.OnTick(tick(2, servo.Approaching, "center"))
	if !strings.Contains(buf.String(), "tick 2") {
		t.Errorf("transition should print, got %q", buf.String())
	}

	buf.Reset()
	p.OnResult(action.ResultReport{GoalID: "g", Goal: vocab.Goal{RequestedClass: "dog"}, Ticks: 2,
		Result: action.Result{Status: action.Aborted, Message: "Tracking Failed"}})
	if !strings.Contains(buf.String(), "Tracking Failed") {
		t.Errorf("unexpected result line %q", buf.String())
	}
}
