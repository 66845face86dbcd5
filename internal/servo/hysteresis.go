package servo

// LossEvent is the per-tick outcome of the detection-loss counter.
type LossEvent int

const (
	LossNone LossEvent = iota
	LossTemporary
	LossLost
)

func (e LossEvent) String() string {
	switch e {
	case LossTemporary:
		return "Lost object temporarily"
	case LossLost:
		return "Lost object"
	default:
		return ""
	}
}

// Hysteresis counts consecutive missed ticks once the target has been seen.
type Hysteresis struct {
	threshold int
	seen      bool
	lost      int
}

func NewHysteresis(threshold int) *Hysteresis {
	return &Hysteresis{threshold: threshold}
}

// Observe records one tick. Exceeding the threshold yields LossLost and
// resets the counter.
func (h *Hysteresis) Observe(detected bool) LossEvent {
	if detected {
		h.seen = true
		h.lost = 0
		return LossNone
	}
	if !h.seen {
		return LossNone
	}
	h.lost++
	if h.lost > h.threshold {
		h.lost = 0
		return LossLost
	}
	return LossTemporary
}

func (h *Hysteresis) Count() int { return h.lost }

// Seen reports whether the target has been detected at least once.
func (h *Hysteresis) Seen() bool { return h.seen }
