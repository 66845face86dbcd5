package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/storage"
)

func TestExtractFillsGaps(t *testing.T) {
	rows := []storage.TickRow{
		{Detected: false},
		{Detected: true, DepthValid: true, Depth: 1.5, Linear: 0.05},
		{Detected: true, DepthValid: false, Linear: 0.0},
		{Detected: true, DepthValid: true, Depth: 1.0, Linear: 0.4},
	}
	got, err := Extract(rows, SeriesDepth)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, 1.5, 1.5, 1.0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	lin, _ := Extract(rows, SeriesLinear)
	if lin[3] != 0.4 {
		t.Errorf("expected raw linear values, got %v", lin)
	}

	if _, err := Extract(rows, "voltage"); err == nil {
		t.Error("expected error for unknown series")
	}
}

func TestPlotSkipsUndefinedSeries(t *testing.T) {
	rows := []storage.TickRow{{Detected: false}, {Detected: false}}
	out, err := Plot(rows, SeriesDepth, 40, 5)
	if err != nil || out != "" {
		t.Errorf("expected empty plot, got %q %v", out, err)
	}

	rows[1] = storage.TickRow{Detected: true, DepthValid: true, Depth: 2}
	out, err = Plot(rows, SeriesDepth, 40, 5)
	if err != nil || !strings.Contains(out, "depth vs tick") {
		t.Errorf("expected captioned plot, got %q %v", out, err)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8}, 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("unexpected sparkline %q", got)
	}
}

func TestMapMarksRobotAndTarget(t *testing.T) {
	m := NewMap(20, 10, 0, 0, 2)
	out := m.Render(0, 0, 0, 1, 1)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	blank := string(rune(brailleBlank))
	lit := 0
	for _, line := range lines {
		for _, r := range line {
			if string(r) != blank {
				lit++
			}
		}
	}
	if lit < 2 {
		t.Errorf("expected robot and target cells, got %d lit cells", lit)
	}
}

func TestBadges(t *testing.T) {
	if !strings.Contains(State(servo.Approaching), "APPROACHING") {
		t.Error("state badge should contain the state name")
	}
	r := action.Result{Status: action.Aborted, Message: "Tracking Failed"}
	if out := Result(r); !strings.Contains(out, "ABORTED") || !strings.Contains(out, "Tracking Failed") {
		t.Errorf("unexpected result line %q", out)
	}
}
