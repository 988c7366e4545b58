package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pira/internal/latency"
)

func (m *Model) View() string {
	width := max(m.width, 40)

	sections := []string{
		m.renderHeader(width),
		m.renderStats(width),
		m.renderHistory(),
		m.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader(width int) string {
	logo := logoStyle.Render("PIRA")
	title := fmt.Sprintf("%s:%d", m.deps.Host, m.deps.Port)

	var pill string
	switch {
	case len(m.history) == 0:
		pill = waitingPillStyle.Render(" " + m.spinner.View() + "WAITING ")
	case m.history[len(m.history)-1].Success:
		pill = upPillStyle.Render(" UP ")
	default:
		pill = downPillStyle.Render(" DOWN ")
	}
	if m.paused {
		pill = waitingPillStyle.Render(" PAUSED ")
	}

	left := logo + title
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(pill), 1)
	topRow := left + strings.Repeat(" ", gap) + pill

	sep := lipgloss.NewStyle().
		Foreground(colorBorder).
		Render(strings.Repeat("─", width))

	return lipgloss.JoinVertical(lipgloss.Left, topRow, sep)
}

func (m *Model) renderStats(width int) string {
	network := m.networkType
	if network == "" {
		network = "…"
	}

	rows := []string{
		row("Network", network),
		row("Interval", m.deps.Interval.String()),
		row("Sent", fmt.Sprintf("%d", m.stats.sent)),
		row("Loss", fmt.Sprintf("%.1f%%", m.stats.lossPercent())),
	}
	if avg := m.stats.avg(); avg >= 0 {
		rows = append(rows, row("Min/Avg/Max", fmt.Sprintf("%d / %s / %d ms",
			m.stats.min, latencyStyle(avg).Render(fmt.Sprintf("%d", avg)), m.stats.max)))
	} else {
		rows = append(rows, row("Min/Avg/Max", dimStyle.Render("n/a")))
	}

	return cardStyle.Width(max(width-4, 30)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("  no results yet")
	}
	lines := make([]string, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		lines = append(lines, "  "+formatResult(m.history[i]))
	}
	return strings.Join(lines, "\n")
}

func formatResult(r latency.Result) string {
	ts := dimStyle.Render(r.Timestamp.Format("15:04:05"))
	if r.Success {
		return fmt.Sprintf("%s  %-8s %s", ts, r.Method, latencyStyle(r.LatencyMS).Render(fmt.Sprintf("%d ms", r.LatencyMS)))
	}
	return fmt.Sprintf("%s  %-8s %s", ts, r.Method, errorStyle.Render(r.Error))
}

func (m *Model) renderHelp() string {
	var parts []string
	for _, b := range keys.ShortHelp() {
		parts = append(parts, helpKeyStyle.Render(b.Help().Key)+" "+helpDescStyle.Render(b.Help().Desc))
	}
	return "\n" + strings.Join(parts, helpSepStyle.Render(" | "))
}

func row(label, value string) string {
	return cardLabelStyle.Render(label) + cardValueStyle.Render(value)
}
