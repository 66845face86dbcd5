package fusion

import (
	"log"
	"sync"
)

const DefaultPatchHalfWidth = 5

// Config bundles the pairing and sampling parameters of a Fuser.
type Config struct {
	Sync           SyncConfig `yaml:"sync"`
	PatchHalfWidth int        `yaml:"patch_half_width"`
	MinScore       float64    `yaml:"min_score"`
	Limits         Limits     `yaml:",inline"`
}

func DefaultConfig() Config {
	return Config{
		Sync:           DefaultSyncConfig(),
		PatchHalfWidth: DefaultPatchHalfWidth,
		Limits:         DefaultLimits(),
	}
}

// Stats counts what the fuser did with incoming frames.
type Stats struct {
	Pairs        int
	Detected     int
	Missed       int
	InvalidDepth int
	Rejected     int
	Dropped      int
}

// Fuser turns paired sensor frames into observations for one target class.
// AddDetections and AddDepth may be called from different goroutines.
type Fuser struct {
	mu      sync.Mutex
	cfg     Config
	classID int
	sync    *Synchronizer
	target  *TargetState
	logger  *log.Logger
	stats   Stats
}

func NewFuser(classID int, target *TargetState, cfg Config, logger *log.Logger) *Fuser {
	if cfg.PatchHalfWidth <= 0 {
		cfg.PatchHalfWidth = DefaultPatchHalfWidth
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fuser{
		cfg:     cfg,
		classID: classID,
		sync:    NewSynchronizer(cfg.Sync),
		target:  target,
		logger:  logger,
	}
}

func (f *Fuser) AddDetections(frame DetectionFrame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pair, ok := f.sync.AddDetections(frame); ok {
		f.fuse(pair)
	}
}

// AddDepth offers a depth frame. A frame with an unknown encoding or a short
// buffer is logged and discarded; the returned error is a *FusionError.
func (f *Fuser) AddDepth(frame *DepthFrame) error {
	if err := frame.Validate(); err != nil {
		f.mu.Lock()
		f.stats.Rejected++
		f.mu.Unlock()
		f.logger.Printf("fusion: skipping depth frame: %v", err)
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pair, ok := f.sync.AddDepth(frame); ok {
		f.fuse(pair)
	}
	return nil
}

func (f *Fuser) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.stats
	s.Dropped = f.sync.Dropped()
	return s
}

// fuse must be called with f.mu held.
func (f *Fuser) fuse(p Pair) {
	f.stats.Pairs++
	det, ok := f.find(p.Detections)
	if !ok {
		f.stats.Missed++
		f.target.Store(Observation{Stamp: p.Detections.Stamp})
		return
	}

	depth, valid := PatchDepth(p.Depth, det.CenterX, det.CenterY, f.cfg.PatchHalfWidth, f.cfg.Limits)
	if !valid {
		f.stats.InvalidDepth++
	}
	f.stats.Detected++
	f.target.Store(Observation{
		Stamp:      p.Detections.Stamp,
		BBoxX:      det.CenterX,
		BBoxY:      det.CenterY,
		DepthM:     depth,
		DepthValid: valid,
		Detected:   true,
	})
}

func (f *Fuser) find(frame DetectionFrame) (Detection, bool) {
	for _, d := range frame.Detections {
		if d.ClassID == f.classID && d.Score >= f.cfg.MinScore {
			return d, true
		}
	}
	return Detection{}, false
}
