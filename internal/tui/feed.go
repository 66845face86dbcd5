// Package tui shows a running goal in the terminal, either as a bubbletea
// monitor or as plain per-tick lines.
package tui

import (
	"github.com/san-kum/seekbot/internal/action"
)

type (
	TickMsg   action.TickReport
	ResultMsg action.ResultReport
)

// Feed is an action.Observer that queues reports for a bubbletea program.
// When the queue is full the oldest tick is discarded; results always
// get through.
type Feed struct {
	ticks   chan action.TickReport
	results chan action.ResultReport
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 64
	}
	return &Feed{
		ticks:   make(chan action.TickReport, buffer),
		results: make(chan action.ResultReport, 1),
	}
}

func (f *Feed) OnTick(r action.TickReport) {
	select {
	case f.ticks <- r:
		return
	default:
	}
	select {
	case <-f.ticks:
	default:
	}
	select {
	case f.ticks <- r:
	default:
	}
}

func (f *Feed) OnResult(r action.ResultReport) {
	select {
	case f.results <- r:
	default:
	}
}

// Next blocks for the next report. Pending ticks are drained before the
// result.
func (f *Feed) Next() any {
	select {
	case t := <-f.ticks:
		return TickMsg(t)
	default:
	}
	select {
	case t := <-f.ticks:
		return TickMsg(t)
	case r := <-f.results:
		return ResultMsg(r)
	}
}
