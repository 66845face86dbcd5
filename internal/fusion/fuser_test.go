package fusion

import (
	"errors"
	"io"
	"log"
	"math"
	"sync"
	"testing"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFuserDetected(t *testing.T) {
	target := NewTargetState()
	f := NewFuser(16, target, DefaultConfig(), quietLogger())

	if target.Snapshot().Detected {
		t.Fatal("observation must start undetected")
	}

	f.AddDetections(DetectionFrame{Stamp: at(0), Detections: []Detection{
		{ClassID: 3, CenterX: 10, CenterY: 10, Score: 0.9},
		{ClassID: 16, CenterX: 320, CenterY: 240, Score: 0.8},
		{ClassID: 16, CenterX: 100, CenterY: 100, Score: 0.95},
	}})
	if err := f.AddDepth(mono16Frame(at(10), 640, 480, 180)); err != nil {
		t.Fatalf("add depth: %v", err)
	}

	obs := target.Snapshot()
	if !obs.Detected || !obs.DepthValid {
		t.Fatalf("expected detected observation, got %+v", obs)
	}
	if obs.BBoxX != 320 || obs.BBoxY != 240 {
		t.Errorf("expected first matching detection, got (%f, %f)", obs.BBoxX, obs.BBoxY)
	}
	if math.Abs(obs.DepthM-0.18) > 1e-9 {
		t.Errorf("expected 0.18m, got %f", obs.DepthM)
	}
}

func TestFuserNotFound(t *testing.T) {
	target := NewTargetState()
	f := NewFuser(16, target, DefaultConfig(), quietLogger())

	f.AddDetections(DetectionFrame{Stamp: at(0), Detections: []Detection{{ClassID: 15}}})
	f.AddDepth(mono16Frame(at(0), 8, 8, 500))

	if target.Writes() != 1 {
		t.Fatalf("expected one write, got %d", target.Writes())
	}
	if target.Snapshot().Detected {
		t.Error("missing class should write detected=false")
	}
	if st := f.Stats(); st.Missed != 1 || st.Pairs != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestFuserInvalidDepthStillDetected(t *testing.T) {
	target := NewTargetState()
	f := NewFuser(0, target, DefaultConfig(), quietLogger())

	f.AddDepth(mono16Frame(at(0), 64, 48, 0))
	f.AddDetections(DetectionFrame{Stamp: at(0), Detections: []Detection{{ClassID: 0, CenterX: 30, CenterY: 20, Score: 1}}})

	obs := target.Snapshot()
	if !obs.Detected || obs.DepthValid || obs.DepthM != 0 {
		t.Errorf("expected detected with invalid zero depth, got %+v", obs)
	}
}

func TestFuserMinScore(t *testing.T) {
	target := NewTargetState()
	cfg := DefaultConfig()
	cfg.MinScore = 0.5
	f := NewFuser(16, target, cfg, quietLogger())

	f.AddDetections(DetectionFrame{Stamp: at(0), Detections: []Detection{{ClassID: 16, Score: 0.3}}})
	f.AddDepth(mono16Frame(at(0), 8, 8, 500))
	if target.Snapshot().Detected {
		t.Error("low score detection should be ignored")
	}
}

func TestFuserRejectsUnknownEncoding(t *testing.T) {
	target := NewTargetState()
	f := NewFuser(16, target, DefaultConfig(), quietLogger())

	f.AddDetections(DetectionFrame{Stamp: at(0), Detections: []Detection{{ClassID: 16, CenterX: 1, CenterY: 1}}})
	err := f.AddDepth(&DepthFrame{Stamp: at(0), Width: 4, Height: 4, Encoding: "bgr8", Data: make([]byte, 48)})
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
	if target.Writes() != 0 {
		t.Error("observation must be unchanged after a rejected frame")
	}
	if f.Stats().Rejected != 1 {
		t.Errorf("expected rejected count 1, got %d", f.Stats().Rejected)
	}
}

func TestFuserConcurrentStreams(t *testing.T) {
	target := NewTargetState()
	f := NewFuser(16, target, DefaultConfig(), quietLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			f.AddDetections(DetectionFrame{Stamp: at(i * 33), Detections: []Detection{{ClassID: 16, CenterX: 5, CenterY: 5, Score: 1}}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			f.AddDepth(mono16Frame(at(i*33+2), 16, 16, 1000))
		}
	}()
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
				obs := target.Snapshot()
				if obs.Detected && obs.BBoxX != 5 {
					t.Errorf("torn observation %+v", obs)
				}
			}
		}
	}()
	wg.Wait()
	close(stop)
	<-readerDone

	if target.Writes() == 0 {
		t.Error("expected at least one fused pair")
	}
}
