// internal/ui/model.go
package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/3picF4iL/poe2-chicken-bot/internal/config"
	"github.com/3picF4iL/poe2-chicken-bot/internal/event"
	"github.com/3picF4iL/poe2-chicken-bot/internal/status"
	"github.com/3picF4iL/poe2-chicken-bot/internal/watchdog"
)

// refresh cadence of the panel; independent of the watchdog poll cadence.
const uiTick = 100 * time.Millisecond

type tickMsg time.Time

type evMsg event.Event

type infoLevel uint8

const (
	infoNone infoLevel = iota
	infoPlain
	infoWarn
	infoErr
)

// Model is the operator panel: live pool values, threshold entry,
// start/stop, and the escape indicator. It only ever talks to the
// watchdog through Status, Start, Stop and SetThreshold.
type Model struct {
	wd      *watchdog.Watchdog
	cfg     *config.Config
	cfgPath string
	events  <-chan event.Event

	threshold textinput.Model
	st        status.Snapshot

	info      string
	infoLevel infoLevel
}

func New(wd *watchdog.Watchdog, cfg *config.Config, cfgPath string, events <-chan event.Event) Model {
	ti := newThresholdInput(cfg.Chickenbot.Threshold)

	return Model{
		wd:        wd,
		cfg:       cfg,
		cfgPath:   cfgPath,
		events:    events,
		threshold: ti,
		st:        wd.Status(),
	}
}

func newThresholdInput(v int64) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "threshold"
	ti.CharLimit = 9
	ti.Width = 9
	ti.SetValue(strconv.FormatInt(v, 10))
	ti.Focus()
	return ti
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(scheduleTick(), m.waitEvent())
}

func scheduleTick() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return evMsg(e)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.st = m.wd.Status()
		return m, scheduleTick()

	case evMsg:
		m.applyEvent(event.Event(msg))
		return m, m.waitEvent()

	case tea.KeyMsg:
		switch msg.String() {
		// Plain letters stay with the threshold entry; only chords and
		// esc leave the panel.
		case "ctrl+c", "esc":
			if m.st.Running {
				_ = m.wd.Stop()
			}
			return m, tea.Quit

		case "ctrl+s":
			m.saveDefaults()
			return m, nil

		case "enter":
			m.toggleRun()
			m.st = m.wd.Status()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.threshold, cmd = m.threshold.Update(msg)
	return m, cmd
}

func (m *Model) applyEvent(e event.Event) {
	switch e.Kind {
	case event.PanicTriggered:
		m.setInfo(fmt.Sprintf("Panic! total %d below %d", e.Total, e.Threshold), infoWarn)
	case event.BlockReleased:
		m.setInfo("Keys released", infoPlain)
	case event.ProcessLost:
		m.setInfo("Target process not found", infoErr)
	case event.ProcessFound:
		m.setInfo("Target process found", infoPlain)
	}
}

// toggleRun is the Start/Stop button. The threshold entry is applied on
// start; while running it is frozen (no defined mid-run behavior).
func (m *Model) toggleRun() {
	if m.st.Running {
		_ = m.wd.Stop()
		m.setInfo("", infoNone)
		return
	}

	t, err := m.parseThreshold()
	if err != nil {
		m.setInfo(err.Error(), infoErr)
		return
	}
	if err := m.wd.SetThreshold(t); err != nil {
		m.setInfo(err.Error(), infoErr)
		return
	}
	m.cfg.Chickenbot.Threshold = int64(t)

	if err := m.wd.Start(context.Background()); err != nil {
		m.setInfo(err.Error(), infoErr)
		return
	}
	m.setInfo("Running...", infoPlain)
}

func (m *Model) parseThreshold() (uint64, error) {
	raw := m.threshold.Value()
	if raw == "" {
		return 0, fmt.Errorf("threshold is empty")
	}
	t, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("threshold %q is not a non-negative number", raw)
	}
	return t, nil
}

// saveDefaults persists the current threshold entry to the config file.
func (m *Model) saveDefaults() {
	t, err := m.parseThreshold()
	if err != nil {
		m.setInfo(err.Error(), infoErr)
		return
	}
	m.cfg.Chickenbot.Threshold = int64(t)

	if err := config.Save(m.cfgPath, m.cfg); err != nil {
		m.setInfo(err.Error(), infoErr)
		return
	}
	m.setInfo("Defaults saved", infoPlain)
}

func (m *Model) setInfo(s string, lvl infoLevel) {
	m.info = s
	m.infoLevel = lvl
}
