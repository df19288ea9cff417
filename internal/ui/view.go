// internal/ui/view.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/3picF4iL/poe2-chicken-bot/internal/status"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(11).
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().Bold(true)

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	panicStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PoE2 Chicken Bot"))
	b.WriteString("\n")

	b.WriteString(m.poolRows())
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Threshold:"))
	b.WriteString(m.threshold.View())
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("State:"))
	b.WriteString(m.stateLine())
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Escaped?:"))
	if m.st.Panicking {
		b.WriteString(panicStyle.Render("Yes"))
	} else {
		b.WriteString(valueStyle.Render("No"))
	}
	b.WriteString("\n")

	if line := m.infoLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter start/stop · ctrl+s save defaults · esc quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) poolRows() string {
	if !m.st.HasSample {
		return labelStyle.Render("Current:") + stoppedStyle.Render("no data")
	}
	row := fmt.Sprintf(
		"HP %s  MP %s  ES %s  Total %s",
		valueStyle.Render(fmt.Sprintf("%d", m.st.HP)),
		valueStyle.Render(fmt.Sprintf("%d", m.st.Mana)),
		valueStyle.Render(fmt.Sprintf("%d", m.st.Shield)),
		valueStyle.Render(fmt.Sprintf("%d", m.st.Total)),
	)
	return labelStyle.Render("Current:") + row
}

func (m Model) stateLine() string {
	if !m.st.Running {
		return stoppedStyle.Render("stopped")
	}
	if m.st.Panicking {
		left := time.Until(m.st.BlockUntil).Round(100 * time.Millisecond)
		if left < 0 {
			left = 0
		}
		return panicStyle.Render(fmt.Sprintf("PANIC (keys blocked %s)", left))
	}
	if m.st.Health == status.HealthProcessLost {
		return errStyle.Render("running · process not found")
	}
	return runningStyle.Render("running")
}

func (m Model) infoLine() string {
	// A live input failure outranks whatever the last action put here:
	// a block or unblock that did not land must never be invisible.
	if m.st.Health == status.HealthInputError && m.st.LastError != "" {
		return errStyle.Render(m.st.LastError)
	}
	switch m.infoLevel {
	case infoWarn:
		return warnStyle.Render(m.info)
	case infoErr:
		return errStyle.Render(m.info)
	case infoPlain:
		return m.info
	default:
		if m.st.LastError != "" {
			return errStyle.Render(m.st.LastError)
		}
		return ""
	}
}
