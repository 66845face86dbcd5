package action

import (
	"time"

	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/vocab"
)

// TickReport describes one executed tick of a goal.
type TickReport struct {
	GoalID      string
	Goal        vocab.Goal
	Tick        int
	Time        time.Time
	Observation fusion.Observation
	Step        servo.Step
	Loss        servo.LossEvent
	Command     servo.Command
	Feedback    string
}

// ResultReport describes the end of a goal.
type ResultReport struct {
	GoalID   string
	Goal     vocab.Goal
	Accepted time.Time
	Finished time.Time
	Ticks    int
	Result   Result
}

// Observer is notified from the execution goroutine. Implementations must
// not block.
type Observer interface {
	OnTick(r TickReport)
	OnResult(r ResultReport)
}
