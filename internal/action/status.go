package action

import "fmt"

// Status is the lifecycle position of a goal.
type Status int32

const (
	Pending Status = iota
	Accepted
	Rejected
	Executing
	Succeeded
	Aborted
	Canceled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Accepted:
		return "ACCEPTED"
	case Rejected:
		return "REJECTED"
	case Executing:
		return "EXECUTING"
	case Succeeded:
		return "SUCCEEDED"
	case Aborted:
		return "ABORTED"
	case Canceled:
		return "CANCELED"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Terminal reports whether s is a final outcome.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Aborted || s == Canceled || s == Rejected
}

// Result is the terminal outcome of a goal.
type Result struct {
	Status  Status
	Message string
	Err     error
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}
