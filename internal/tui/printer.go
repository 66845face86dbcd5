package tui

import (
	"fmt"
	"io"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/viz"
)

// Printer writes one styled line per tick and per result. It implements
// action.Observer.
type Printer struct {
	w       io.Writer
	verbose bool
}

// NewPrinter prints only state changes and loss events unless verbose is set.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

func (p *Printer) OnTick(t action.TickReport) {
	if !p.verbose && !t.Step.Transitioned() && t.Loss == servo.LossNone {
		return
	}
	fmt.Fprintf(p.w, "%s tick %-4d %-12s %s %s\n",
		viz.Subtle.Render(t.GoalID[:min(8, len(t.GoalID))]), t.Tick, viz.State(t.Step.To), t.Command, t.Feedback)
}

func (p *Printer) OnResult(r action.ResultReport) {
	fmt.Fprintf(p.w, "goal %s (%s) after %d ticks: %s\n",
		r.GoalID, r.Goal.RequestedClass, r.Ticks, viz.Result(r.Result))
}
