package action

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
)

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type recordingSink struct {
	mu   sync.Mutex
	cmds []servo.Command
}

func (r *recordingSink) Publish(cmd servo.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recordingSink) Commands() []servo.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]servo.Command, len(r.cmds))
	copy(out, r.cmds)
	return out
}

type recordingObserver struct {
	mu      sync.Mutex
	ticks   []TickReport
	results []ResultReport
}

func (o *recordingObserver) OnTick(r TickReport) {
	o.mu.Lock()
	o.ticks = append(o.ticks, r)
	o.mu.Unlock()
}

func (o *recordingObserver) OnResult(r ResultReport) {
	o.mu.Lock()
	o.results = append(o.results, r)
	o.mu.Unlock()
}

type harness struct {
	t        *testing.T
	server   *Server
	sink     *recordingSink
	ticker   *manualTicker
	observer *recordingObserver
	stamp    time.Time
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{
		t:        t,
		sink:     &recordingSink{},
		ticker:   &manualTicker{ch: make(chan time.Time)},
		observer: &recordingObserver{},
		stamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	srv, err := NewServer(vocab.NewValidator(vocab.COCO()), h.sink, cfg,
		WithTicker(func(time.Duration) Ticker { return h.ticker }),
		WithObserver(h.observer),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h.server = srv
	return h
}

// see feeds one fused pair containing the class at (x, y) with a uniform depth.
func (h *harness) see(classID int, x, y float64, depthMM uint16) {
	h.stamp = h.stamp.Add(100 * time.Millisecond)
	h.server.OnDetections(fusion.DetectionFrame{Stamp: h.stamp, Detections: []fusion.Detection{
		{ClassID: classID, CenterX: x, CenterY: y, Score: 0.9},
	}})
	if err := h.server.OnDepth(depthFrame(h.stamp, depthMM)); err != nil {
		h.t.Fatalf("depth rejected: %v", err)
	}
}

// miss feeds one fused pair without the target.
func (h *harness) miss() {
	h.stamp = h.stamp.Add(100 * time.Millisecond)
	h.server.OnDetections(fusion.DetectionFrame{Stamp: h.stamp})
	if err := h.server.OnDepth(depthFrame(h.stamp, 1000)); err != nil {
		h.t.Fatalf("depth rejected: %v", err)
	}
}

// tick advances the loop by one tick and returns that tick's feedback.
func (h *harness) tick(g *Handle) string {
	h.t.Helper()
	select {
	case h.ticker.ch <- h.stamp:
	case <-time.After(2 * time.Second):
		h.t.Fatal("execution loop did not take the tick")
	}
	return h.feedback(g)
}

func (h *harness) feedback(g *Handle) string {
	h.t.Helper()
	select {
	case line, ok := <-g.Feedback():
		if !ok {
			h.t.Fatal("feedback closed")
		}
		return line
	case <-time.After(2 * time.Second):
		h.t.Fatal("no feedback")
	}
	return ""
}

func (h *harness) result(g *Handle) Result {
	h.t.Helper()
	select {
	case res := <-g.Result():
		return res
	case <-time.After(2 * time.Second):
		h.t.Fatal("no result")
	}
	return Result{}
}

func depthFrame(stamp time.Time, mm uint16) *fusion.DepthFrame {
	const w, h = 640, 480
	data := make([]byte, w*h*2)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], mm)
	}
	return &fusion.DepthFrame{Stamp: stamp, Width: w, Height: h, Encoding: fusion.Encoding16UC1, Data: data}
}
