// Package tui renders a live view of a continuous monitor.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pira/internal/latency"
)

// historySize bounds the rows kept for the history list.
const historySize = 20

// MonitorService is the part of the service the view needs.
type MonitorService interface {
	StartMonitor(ctx context.Context, host string, port, intervalMS int, onResult latency.ResultFunc) *latency.Handle
	CancelMonitor(h *latency.Handle)
	NetworkType() string
}

// Deps holds all dependencies injected into the TUI.
type Deps struct {
	Service  MonitorService
	Host     string
	Port     int
	Interval time.Duration
}

// Model is the root BubbleTea model.
type Model struct {
	deps    Deps
	handle  *latency.Handle
	results chan latency.Result

	width  int
	height int

	paused      bool
	networkType string
	history     []latency.Result
	stats       stats

	spinner spinner.Model
}

// stats aggregates results since start or the last reset.
type stats struct {
	sent      int
	succeeded int
	min       int
	max       int
	total     int
}

func (s *stats) add(r latency.Result) {
	s.sent++
	if !r.Success {
		return
	}
	if s.succeeded == 0 || r.LatencyMS < s.min {
		s.min = r.LatencyMS
	}
	if r.LatencyMS > s.max {
		s.max = r.LatencyMS
	}
	s.succeeded++
	s.total += r.LatencyMS
}

func (s stats) avg() int {
	if s.succeeded == 0 {
		return latency.NoLatency
	}
	return s.total / s.succeeded
}

func (s stats) lossPercent() float64 {
	if s.sent == 0 {
		return 0
	}
	return float64(s.sent-s.succeeded) * 100 / float64(s.sent)
}

// NewModel creates a new root Model.
func NewModel(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return &Model{
		deps:    deps,
		results: make(chan latency.Result, 16),
		spinner: s,
	}
}

func (m *Model) Init() tea.Cmd {
	results := m.results
	m.handle = m.deps.Service.StartMonitor(
		context.Background(),
		m.deps.Host,
		m.deps.Port,
		int(m.deps.Interval/time.Millisecond),
		func(r latency.Result) {
			// Drop rather than stall the monitor when the view lags.
			select {
			case results <- r:
			default:
			}
		},
	)

	return tea.Batch(
		waitForResult(m.results, m.handle.Done()),
		loadNetworkType(m.deps.Service),
		m.spinner.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, keys.Reset):
			m.stats = stats{}
			m.history = nil
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		}
		return m, nil

	case resultMsg:
		if !m.paused {
			m.record(msg.result)
		}
		return m, waitForResult(m.results, m.handle.Done())

	case networkTypeMsg:
		m.networkType = msg.kind
		return m, nil

	case monitorStoppedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) record(r latency.Result) {
	m.stats.add(r)
	m.history = append(m.history, r)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func (m *Model) stop() {
	if m.handle != nil {
		m.deps.Service.CancelMonitor(m.handle)
	}
}

func waitForResult(results <-chan latency.Result, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-results:
			return resultMsg{result: r}
		case <-done:
			return monitorStoppedMsg{}
		}
	}
}

func loadNetworkType(svc MonitorService) tea.Cmd {
	return func() tea.Msg {
		return networkTypeMsg{kind: svc.NetworkType()}
	}
}

// NewProgram creates the BubbleTea program for a monitor view.
func NewProgram(deps Deps) *tea.Program {
	return tea.NewProgram(NewModel(deps), tea.WithAltScreen())
}
