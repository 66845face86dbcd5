package scene

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/integrators"
	"github.com/san-kum/seekbot/internal/servo"
)

// Pose is the robot position and heading in the world frame.
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}

// unicycle is x' = v cos(theta), y' = v sin(theta), theta' = omega with
// u = (v, omega).
var unicycle = integrators.SystemFunc(func(x integrators.State, u integrators.Control, t float64) integrators.State {
	return integrators.State{u[0] * math.Cos(x[2]), u[0] * math.Sin(x[2]), u[1]}
})

// Scene is safe for concurrent use. Publish may be called from the
// controller goroutine while the owner advances and renders.
type Scene struct {
	mu       sync.Mutex
	cfg      Config
	classID  int
	stepper  integrators.Stepper
	rng      *rand.Rand
	state    integrators.State
	cmd      servo.Command
	elapsed  float64
	commands int
}

// New places the robot at the configured start pose. classID is the class
// the target is reported as.
func New(cfg Config, classID int) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultTargetSize
	}
	return &Scene{
		cfg:     cfg,
		classID: classID,
		stepper: stepper,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		state:   integrators.State{cfg.StartX, cfg.StartY, deg2rad(cfg.StartHeading)},
	}, nil
}

// Publish latches cmd until the next one arrives.
func (s *Scene) Publish(cmd servo.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmd = cmd
	s.commands++
	return nil
}

// Advance integrates the latched command over d.
func (s *Scene) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := integrators.Control{s.cmd.Linear, s.cmd.Angular}
	remaining := d.Seconds()
	for remaining > 1e-12 {
		dt := math.Min(s.cfg.Dt, remaining)
		s.state = s.stepper.Step(unicycle, s.state, u, s.elapsed, dt)
		s.elapsed += dt
		remaining -= dt
	}
	s.state[2] = wrapAngle(s.state[2])
}

func (s *Scene) Pose() Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Pose{X: s.state[0], Y: s.state[1], Heading: s.state[2]}
}

// Command returns the latched velocity command and how many were received.
func (s *Scene) Command() (servo.Command, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd, s.commands
}

// Distance is the planar distance from the robot to the target.
func (s *Scene) Distance() float64 {
	p := s.Pose()
	return math.Hypot(s.cfg.TargetX-p.X, s.cfg.TargetY-p.Y)
}

// Bearing is the target direction relative to the heading, positive to the
// left, in (-pi, pi].
func (s *Scene) Bearing() float64 {
	p := s.Pose()
	return wrapAngle(math.Atan2(s.cfg.TargetY-p.Y, s.cfg.TargetX-p.X) - p.Heading)
}

// Projection is where the target lands on the image.
type Projection struct {
	U, V    float64
	Depth   float64
	Radius  int
	Visible bool
}

// Project runs the pinhole model for the current pose.
func (s *Scene) Project() Projection {
	bearing := s.Bearing()
	dist := s.Distance()
	halfH := deg2rad(s.cfg.HFOV) / 2
	if math.Abs(bearing) >= halfH {
		return Projection{}
	}
	depth := dist * math.Cos(bearing)
	if depth <= 0 {
		return Projection{}
	}
	cx := float64(s.cfg.ImageWidth) / 2
	cy := float64(s.cfg.ImageHeight) / 2
	fx := cx / math.Tan(halfH)
	radius := int(math.Ceil(fx * s.cfg.TargetSize / 2 / depth))
	if radius < 1 {
		radius = 1
	}
	return Projection{
		U:       cx - fx*math.Tan(bearing),
		V:       cy,
		Depth:   depth,
		Radius:  radius,
		Visible: true,
	}
}

// Render produces the detection and depth frames a camera would publish now.
// Dropout removes the detection but keeps the depth image.
func (s *Scene) Render(stamp time.Time) (fusion.DetectionFrame, *fusion.DepthFrame) {
	proj := s.Project()

	s.mu.Lock()
	defer s.mu.Unlock()

	dets := fusion.DetectionFrame{Stamp: stamp}
	if proj.Visible && s.rng.Float64() >= s.cfg.Dropout {
		dets.Detections = append(dets.Detections, fusion.Detection{
			ClassID: s.classID,
			CenterX: proj.U,
			CenterY: proj.V,
			Score:   s.cfg.Score,
		})
	}
	return dets, s.depthImage(stamp, proj)
}

// depthImage must be called with s.mu held.
func (s *Scene) depthImage(stamp time.Time, proj Projection) *fusion.DepthFrame {
	w, h := s.cfg.ImageWidth, s.cfg.ImageHeight
	data := make([]byte, w*h*2)
	bg := toMillimetres(s.cfg.Background)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], bg)
	}

	if proj.Visible {
		u, v := int(proj.U), int(proj.V)
		for y := max(0, v-proj.Radius); y < min(h, v+proj.Radius); y++ {
			for x := max(0, u-proj.Radius); x < min(w, u+proj.Radius); x++ {
				d := proj.Depth
				if s.cfg.DepthNoise > 0 {
					d += s.rng.NormFloat64() * s.cfg.DepthNoise
				}
				binary.LittleEndian.PutUint16(data[(y*w+x)*2:], toMillimetres(d))
			}
		}
	}

	return &fusion.DepthFrame{
		Stamp:    stamp,
		Width:    w,
		Height:   h,
		Encoding: fusion.Encoding16UC1,
		Data:     data,
	}
}

func toMillimetres(m float64) uint16 {
	mm := math.Round(m * 1000)
	if mm <= 0 {
		return 0
	}
	if mm > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(mm)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
