package servo

import (
	"math"

	"github.com/san-kum/seekbot/internal/fusion"
)

// Output is the raw control-law result of one tick.
type Output struct {
	Linear  float64
	Angular float64
}

// Step describes one evaluated tick.
type Step struct {
	From     State
	To       State
	Output   Output
	PixelErr float64
	DepthErr float64
}

func (s Step) Transitioned() bool { return s.From != s.To }

// Done reports whether the tick reached the terminal state.
func (s Step) Done() bool { return s.To.Terminal() }

// Machine is the approach state machine. It is owned by a single control
// loop and is not safe for concurrent use.
type Machine struct {
	p     Params
	state State
}

func NewMachine(p Params) *Machine {
	return &Machine{p: p, state: Searching}
}

func (m *Machine) State() State { return m.state }

// Tick evaluates one observation. At most one transition happens per call.
func (m *Machine) Tick(obs fusion.Observation) Step {
	step := Step{From: m.state, To: m.state}

	switch m.state {
	case Searching:
		step.Output = m.searchLaw()
		if obs.Detected {
			step.To = Tracking
		}

	case Tracking:
		if !obs.Detected {
			step.Output = m.reacquireLaw()
			break
		}
		step.PixelErr = m.pixelErr(obs)
		step.Output = m.trackLaw(step.PixelErr)
		if math.Abs(step.PixelErr) < m.p.CenterTolerancePx {
			step.To = Approaching
		}

	case Approaching:
		if !obs.Detected {
			step.Output = m.reacquireLaw()
			break
		}
		step.PixelErr = m.pixelErr(obs)
		if math.Abs(step.PixelErr) >= m.p.CenterTolerancePx {
			step.Output = m.trackLaw(step.PixelErr)
			step.To = Tracking
			break
		}
		if !obs.DepthValid {
			// Centred but no usable depth: hold position until a sample arrives.
			break
		}
		step.DepthErr = obs.DepthM - m.p.DepthTarget
		if math.Abs(step.DepthErr) < m.p.DepthTolerance {
			step.To = Halted
			break
		}
		step.Output = Output{Linear: clamp(step.DepthErr, 0, m.p.MaxLinSpeed)}

	case Halted:
	}

	m.state = step.To
	return step
}

func (m *Machine) pixelErr(obs fusion.Observation) float64 {
	cx, _ := m.p.ImageCenter()
	return obs.BBoxX - cx
}

func (m *Machine) searchLaw() Output {
	return Output{Linear: m.p.CrawlSpeed, Angular: m.p.SearchRotSpeed}
}

// reacquireLaw turns in place while the target is temporarily out of view.
func (m *Machine) reacquireLaw() Output {
	return Output{Angular: m.p.SearchRotSpeed}
}

func (m *Machine) trackLaw(pixelErr float64) Output {
	cx, _ := m.p.ImageCenter()
	norm := pixelErr / cx
	return Output{
		Linear:  m.p.CrawlSpeed,
		Angular: -clamp(norm*m.p.MaxAngSpeed, -m.p.MaxAngSpeed, m.p.MaxAngSpeed),
	}
}

// clamp keeps value inside [lo, hi].
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
