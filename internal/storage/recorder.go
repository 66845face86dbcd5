package storage

import (
	"log"
	"sync"
	"time"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
)

// Recorder saves every finished goal to a Store. It implements
// action.Observer.
type Recorder struct {
	store  *Store
	source string
	tickHz float64
	logger *log.Logger

	mu    sync.Mutex
	rows  map[string][]TickRow
	start map[string]time.Time
	saved []string
	err   error
}

func NewRecorder(store *Store, source string, tickHz float64, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		store:  store,
		source: source,
		tickHz: tickHz,
		logger: logger,
		rows:   make(map[string][]TickRow),
		start:  make(map[string]time.Time),
	}
}

func (r *Recorder) OnTick(t action.TickReport) {
	row := TickRow{
		Tick:       t.Tick,
		State:      t.Step.To.String(),
		Detected:   t.Observation.Detected,
		BBoxX:      t.Observation.BBoxX,
		BBoxY:      t.Observation.BBoxY,
		Depth:      t.Observation.DepthM,
		DepthValid: t.Observation.DepthValid,
		Linear:     t.Command.Linear,
		Angular:    t.Command.Angular,
		Loss:       t.Loss.String(),
		Feedback:   t.Feedback,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.start[t.GoalID]
	if !ok {
		start = t.Time
		r.start[t.GoalID] = start
	}
	row.Time = t.Time.Sub(start).Seconds()
	r.rows[t.GoalID] = append(r.rows[t.GoalID], row)
}

func (r *Recorder) OnResult(res action.ResultReport) {
	r.mu.Lock()
	rows := r.rows[res.GoalID]
	delete(r.rows, res.GoalID)
	delete(r.start, res.GoalID)
	r.mu.Unlock()

	meta := RunMetadata{
		GoalID:    res.GoalID,
		Class:     res.Goal.RequestedClass,
		ClassID:   res.Goal.ClassID,
		Source:    r.source,
		Timestamp: res.Accepted,
		Finished:  res.Finished,
		TickHz:    r.tickHz,
		Ticks:     res.Ticks,
		Status:    res.Result.Status.String(),
		Message:   res.Result.Message,
		Metrics:   Summarize(rows, r.tickHz),
	}
	id, err := r.store.Save(meta, rows)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.err = err
		r.logger.Printf("storage: saving goal %s: %v", res.GoalID, err)
		return
	}
	r.saved = append(r.saved, id)
}

// Saved returns the run ids written so far and the last save error.
func (r *Recorder) Saved() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.saved))
	copy(out, r.saved)
	return out, r.err
}

// Summarize computes the metrics stored with a run.
func Summarize(rows []TickRow, tickHz float64) map[string]float64 {
	m := map[string]float64{}
	if len(rows) == 0 {
		return m
	}
	var detected, lost, linear float64
	for _, row := range rows {
		if row.Detected {
			detected++
		}
		if row.Loss == servo.LossLost.String() {
			lost++
		}
		linear += row.Linear
	}
	m["detected_ratio"] = detected / float64(len(rows))
	m["lost_events"] = lost
	if tickHz > 0 {
		m["commanded_distance"] = linear / tickHz
	}
	last := rows[len(rows)-1]
	if last.DepthValid {
		m["final_depth"] = last.Depth
	}
	return m
}
