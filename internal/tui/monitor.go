package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/viz"
)

const (
	historyCapacity = 120
	feedbackLines   = 8
)

// Pose reports the robot and target positions for the map panel.
type Pose func() (x, y, heading, tx, ty float64)

// Monitor is the bubbletea model for one goal.
type Monitor struct {
	feed     *Feed
	handle   *action.Handle
	pose     Pose
	world    *viz.Map
	last     action.TickReport
	seen     bool
	feedback []string
	depth    []float64
	angular  []float64
	result   *action.ResultReport
	quitting bool
}

func NewMonitor(feed *Feed, h *action.Handle) Monitor {
	return Monitor{feed: feed, handle: h}
}

// WithPose adds a top-down map of the scene.
func (m Monitor) WithPose(p Pose, halfExtent float64) Monitor {
	m.pose = p
	x, y, _, tx, ty := p()
	m.world = viz.NewMap(36, 12, (x+tx)/2, (y+ty)/2, halfExtent)
	return m
}

func (m Monitor) wait() tea.Cmd {
	return func() tea.Msg { return m.feed.Next() }
}

func (m Monitor) Init() tea.Cmd { return m.wait() }

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.result == nil && m.handle != nil {
				m.handle.Cancel()
			}
			m.quitting = true
			return m, tea.Quit
		case "c":
			if m.result == nil && m.handle != nil {
				m.handle.Cancel()
			}
		}
	case TickMsg:
		m.apply(action.TickReport(msg))
		return m, m.wait()
	case ResultMsg:
		r := action.ResultReport(msg)
		m.result = &r
	}
	return m, nil
}

func (m *Monitor) apply(t action.TickReport) {
	m.last = t
	m.seen = true
	m.feedback = appendCapped(m.feedback, fmt.Sprintf("%3d %s", t.Tick, t.Feedback), feedbackLines)
	if t.Observation.Detected && t.Observation.DepthValid {
		m.depth = appendCapped(m.depth, t.Observation.DepthM, historyCapacity)
	}
	m.angular = appendCapped(m.angular, t.Command.Angular, historyCapacity)
}

func appendCapped[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

// Result is the outcome seen by the monitor, if any.
func (m Monitor) Result() (action.ResultReport, bool) {
	if m.result == nil {
		return action.ResultReport{}, false
	}
	return *m.result, true
}

func (m Monitor) View() string {
	if m.quitting {
		return ""
	}
	var s strings.Builder

	title := "waiting for goal"
	if m.handle != nil {
		title = fmt.Sprintf("seeking %s", m.handle.Goal.RequestedClass)
	}
	s.WriteString(viz.HeaderStyle.Render(strings.ToUpper(title)) + "\n\n")

	state := servo.Searching
	if m.seen {
		state = m.last.Step.To
	}
	s.WriteString(viz.Row("State", "") + viz.State(state) + "\n")
	s.WriteString(viz.Row("Tick", fmt.Sprintf("%d", m.last.Tick)) + "\n")
	s.WriteString(viz.Row("Command", m.last.Command.String()) + "\n")
	obs := m.last.Observation
	if obs.Detected {
		s.WriteString(viz.Row("Target", fmt.Sprintf("(%.0f, %.0f) px", obs.BBoxX, obs.BBoxY)) + "\n")
	} else {
		s.WriteString(viz.Row("Target", "not in view") + "\n")
	}
	if obs.Detected && obs.DepthValid {
		s.WriteString(viz.Row("Depth", fmt.Sprintf("%.3f m", obs.DepthM)) + "\n")
	}
	if m.last.Loss != servo.LossNone {
		s.WriteString(viz.Warning.Render(m.last.Loss.String()) + "\n")
	}
	s.WriteString(viz.Row("Turn", viz.Sparkline(m.angular, 30)) + "\n")

	left := s.String()
	var right strings.Builder
	if len(m.depth) > 1 {
		right.WriteString(asciigraph.Plot(m.depth, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("depth (m)")))
		right.WriteString("\n\n")
	}
	if m.world != nil {
		right.WriteString(m.world.Render(m.pose()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, viz.Panel.Render(left), "  ", right.String())

	var out strings.Builder
	out.WriteString(body + "\n\n")
	out.WriteString(viz.Title.Render("Feedback") + "\n")
	for _, line := range m.feedback {
		out.WriteString(viz.Subtle.Render(line) + "\n")
	}
	if m.result != nil {
		out.WriteString("\n" + viz.Result(m.result.Result) + "\n")
		out.WriteString(viz.KeyHint.Render("q quit") + "\n")
	} else {
		out.WriteString("\n" + viz.KeyHint.Render("c cancel goal  q quit") + "\n")
	}
	return out.String()
}
