// Package tui shows solver progress live while Solve iterates.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Progress is one solver update: pushed after every iteration, with Done or
// Err set on the final one.
type Progress struct {
	Iteration int
	Cost      float64
	Done      bool
	Err       error
}

// Info labels the solve in the header.
type Info struct {
	Model         string
	Scheme        string
	Dt            float64
	Horizon       float64
	MaxIterations int
}

type model struct {
	info     Info
	ch       <-chan Progress
	history  []float64
	iter     int
	cost     float64
	done     bool
	err      error
	quitting bool
	width    int
}

func newModel(info Info, ch <-chan Progress) model {
	return model{
		info:    info,
		ch:      ch,
		history: make([]float64, 0, info.MaxIterations),
		width:   80,
	}
}

type progressMsg Progress

func waitForProgress(ch <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return progressMsg(Progress{Done: true})
		}
		return progressMsg(p)
	}
}

func (m model) Init() tea.Cmd {
	return waitForProgress(m.ch)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case progressMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.done = true
			return m, tea.Quit
		}
		if msg.Iteration > 0 {
			m.iter = msg.Iteration
			m.cost = msg.Cost
			m.history = append(m.history, msg.Cost)
		}
		if msg.Done {
			m.done = true
			return m, tea.Quit
		}
		return m, waitForProgress(m.ch)
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("t r a j o p t") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	b.WriteString("    " + white.Render(m.info.Model) +
		dim.Render(fmt.Sprintf("  %s  dt=%.3g  tf=%.3g", m.info.Scheme, m.info.Dt, m.info.Horizon)) + "\n\n")

	status := yellow.Render("○ iterating")
	if m.done {
		if m.err != nil {
			status = red.Render("✗ " + m.err.Error())
		} else {
			status = green.Render("● converged")
		}
	}
	b.WriteString("    " + status + "\n\n")

	barWidth := 36
	progress := 0.0
	if m.info.MaxIterations > 0 {
		progress = float64(m.iter) / float64(m.info.MaxIterations)
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("    %s %s\n\n", bar,
		dim.Render(fmt.Sprintf("iter %d/%d", m.iter, m.info.MaxIterations))))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(50),
			asciigraph.Caption("cost"))
		for _, line := range strings.Split(chart, "\n") {
			b.WriteString("    " + dim.Render(line) + "\n")
		}
		b.WriteString("\n")
	}
	if m.iter > 0 {
		b.WriteString("    " + dim.Render("cost ") + white.Render(fmt.Sprintf("%.6g", m.cost)) + "\n")
	}

	b.WriteString("\n" + dim.Render("    q quit") + "\n")
	return b.String()
}

// RunLive drives the progress view until the channel closes or reports a
// terminal update. The solve loop runs on the producing side of ch.
func RunLive(info Info, ch <-chan Progress) error {
	p := tea.NewProgram(newModel(info, ch))
	_, err := p.Run()
	return err
}
