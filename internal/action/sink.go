package action

import (
	"errors"

	"github.com/san-kum/seekbot/internal/servo"
)

// VelocitySink receives the velocity command of each tick.
type VelocitySink interface {
	Publish(cmd servo.Command) error
}

// SinkFunc adapts a function to VelocitySink.
type SinkFunc func(cmd servo.Command) error

func (f SinkFunc) Publish(cmd servo.Command) error { return f(cmd) }

// MultiSink publishes to every sink and joins their errors.
type MultiSink []VelocitySink

func (m MultiSink) Publish(cmd servo.Command) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
