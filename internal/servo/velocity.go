package servo

import (
	"fmt"
	"math"
)

// Command is a velocity command for the motor bridge.
type Command struct {
	Linear  float64 `json:"linear_x"`
	Angular float64 `json:"angular_z"`
}

// Stop is the zero-velocity command.
var Stop = Command{}

func (c Command) IsZero() bool { return c.Linear == 0 && c.Angular == 0 }

func (c Command) String() string {
	return fmt.Sprintf("(%+.3f m/s, %+.3f rad/s)", c.Linear, c.Angular)
}

// VelocityController bounds control-law outputs to the platform limits.
type VelocityController struct {
	maxLin float64
	maxAng float64
}

func NewVelocityController(p Params) *VelocityController {
	return &VelocityController{
		maxLin: p.MaxLinSpeed,
		maxAng: math.Max(p.MaxAngSpeed, math.Abs(p.SearchRotSpeed)),
	}
}

func (v *VelocityController) Command(out Output) Command {
	return Command{
		Linear:  bound(out.Linear, v.maxLin),
		Angular: bound(out.Angular, v.maxAng),
	}
}

func bound(value, limit float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return clamp(value, -limit, limit)
}
