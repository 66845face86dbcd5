// Package integrators advances ordinary differential equations by one fixed
// time step.
package integrators

import "fmt"

type (
	State   []float64
	Control []float64
)

// System is dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
}

// SystemFunc adapts a function to System.
type SystemFunc func(x State, u Control, t float64) State

func (f SystemFunc) Derive(x State, u Control, t float64) State { return f(x, u, t) }

type Stepper interface {
	Step(sys System, x State, u Control, t, dt float64) State
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	switch name {
	case "", "rk4":
		return NewRK4(), nil
	case "euler":
		return NewEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}
