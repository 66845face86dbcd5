package vocab

import (
	"errors"
	"fmt"
)

// ErrUnknownClass is returned for a requested class outside the vocabulary.
var ErrUnknownClass = errors.New("unknown class")

// Goal is a validated request to approach one object class.
type Goal struct {
	RequestedClass string
	ClassID        int
}

func (g Goal) String() string {
	return fmt.Sprintf("%s (class_id=%d)", g.RequestedClass, g.ClassID)
}

// RejectedError reports why a goal request was refused.
type RejectedError struct {
	Requested string
	Wrapped   error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("goal %q rejected: %v", e.Requested, e.Wrapped)
}

func (e *RejectedError) Unwrap() error {
	return e.Wrapped
}

// Validator checks goal requests against a vocabulary.
type Validator struct {
	vocab *Vocabulary
}

func NewValidator(v *Vocabulary) *Validator {
	return &Validator{vocab: v}
}

func (v *Validator) Vocabulary() *Vocabulary { return v.vocab }

// Accept normalises requested and returns the goal for it, or a
// *RejectedError wrapping ErrUnknownClass.
func (v *Validator) Accept(requested string) (Goal, error) {
	name := Normalize(requested)
	if name == "" {
		return Goal{}, &RejectedError{Requested: requested, Wrapped: ErrUnknownClass}
	}
	id, ok := v.vocab.ID(name)
	if !ok {
		return Goal{}, &RejectedError{Requested: requested, Wrapped: ErrUnknownClass}
	}
	return Goal{RequestedClass: name, ClassID: id}, nil
}
