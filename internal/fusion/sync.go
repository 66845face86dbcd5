package fusion

import "time"

const (
	DefaultQueueSize = 10
	DefaultSlop      = 100 * time.Millisecond
)

// SyncConfig controls approximate-time pairing.
type SyncConfig struct {
	QueueSize int           `yaml:"queue_size"`
	Slop      time.Duration `yaml:"slop"`
}

func DefaultSyncConfig() SyncConfig {
	return SyncConfig{QueueSize: DefaultQueueSize, Slop: DefaultSlop}
}

// Pair is one detection frame matched with one depth frame.
type Pair struct {
	Detections DetectionFrame
	Depth      *DepthFrame
}

// Delta is the absolute stamp difference of the pair.
func (p Pair) Delta() time.Duration {
	return absDuration(p.Detections.Stamp.Sub(p.Depth.Stamp))
}

// Synchronizer pairs the two sensor streams by nearest timestamp. Each stream
// is assumed to be stamped monotonically. It is not safe for concurrent use.
type Synchronizer struct {
	cfg     SyncConfig
	dets    queue[DetectionFrame]
	depths  queue[*DepthFrame]
	dropped int
}

func NewSynchronizer(cfg SyncConfig) *Synchronizer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Slop < 0 {
		cfg.Slop = 0
	}
	return &Synchronizer{
		cfg:    cfg,
		dets:   queue[DetectionFrame]{stamp: func(f DetectionFrame) time.Time { return f.Stamp }},
		depths: queue[*DepthFrame]{stamp: func(f *DepthFrame) time.Time { return f.Stamp }},
	}
}

// AddDetections offers a detection frame and returns a pair when a depth
// frame inside the slop window is buffered.
func (s *Synchronizer) AddDetections(f DetectionFrame) (Pair, bool) {
	s.dropped += s.depths.dropBefore(f.Stamp.Add(-s.cfg.Slop))
	if i, ok := s.depths.nearest(f.Stamp, s.cfg.Slop); ok {
		depth := s.depths.items[i]
		s.dropped += s.depths.dropThrough(depth.Stamp) - 1
		s.dropped += s.dets.dropThrough(f.Stamp)
		return Pair{Detections: f, Depth: depth}, true
	}
	s.dropped += s.dets.push(f, s.cfg.QueueSize)
	return Pair{}, false
}

// AddDepth offers a depth frame and returns a pair when a detection frame
// inside the slop window is buffered.
func (s *Synchronizer) AddDepth(f *DepthFrame) (Pair, bool) {
	s.dropped += s.dets.dropBefore(f.Stamp.Add(-s.cfg.Slop))
	if i, ok := s.dets.nearest(f.Stamp, s.cfg.Slop); ok {
		det := s.dets.items[i]
		s.dropped += s.dets.dropThrough(det.Stamp) - 1
		s.dropped += s.depths.dropThrough(f.Stamp)
		return Pair{Detections: det, Depth: f}, true
	}
	s.dropped += s.depths.push(f, s.cfg.QueueSize)
	return Pair{}, false
}

// Pending returns the number of buffered frames per stream.
func (s *Synchronizer) Pending() (detections, depths int) {
	return len(s.dets.items), len(s.depths.items)
}

// Dropped returns the number of frames discarded without being paired.
func (s *Synchronizer) Dropped() int { return s.dropped }

type queue[T any] struct {
	items []T
	stamp func(T) time.Time
}

func (q *queue[T]) nearest(t time.Time, slop time.Duration) (int, bool) {
	best, bestDelta := -1, time.Duration(0)
	for i, it := range q.items {
		d := absDuration(q.stamp(it).Sub(t))
		if d > slop {
			continue
		}
		if best < 0 || d < bestDelta {
			best, bestDelta = i, d
		}
	}
	return best, best >= 0
}

// dropThrough removes every item stamped at or before t.
func (q *queue[T]) dropThrough(t time.Time) int {
	return q.filter(func(it T) bool { return q.stamp(it).After(t) })
}

// dropBefore removes every item stamped strictly before t.
func (q *queue[T]) dropBefore(t time.Time) int {
	return q.filter(func(it T) bool { return !q.stamp(it).Before(t) })
}

func (q *queue[T]) filter(keep func(T) bool) int {
	kept := q.items[:0]
	for _, it := range q.items {
		if keep(it) {
			kept = append(kept, it)
		}
	}
	removed := len(q.items) - len(kept)
	var zero T
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = zero
	}
	q.items = kept
	return removed
}

func (q *queue[T]) push(v T, max int) int {
	q.items = append(q.items, v)
	over := len(q.items) - max
	if over <= 0 {
		return 0
	}
	var zero T
	for i := 0; i < over; i++ {
		q.items[i] = zero
	}
	q.items = q.items[over:]
	return over
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
