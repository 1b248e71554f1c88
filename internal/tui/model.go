// Package tui renders the timer in the terminal and turns key presses into
// application actions. The bubbletea event loop is the only goroutine that
// touches the Application.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasktimer/internal/app"
	"tasktimer/internal/config"
	appLog "tasktimer/internal/log"
	"tasktimer/internal/timer"
)

const frameInterval = 100 * time.Millisecond

type frameMsg time.Time

// ReloadMsg asks the model to re-read the configuration and refresh the
// calendars. Other goroutines deliver it with Program.Send.
type ReloadMsg struct{}

var (
	phaseStyles = map[timer.Kind]lipgloss.Style{
		timer.KindIdle:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		timer.KindWorking:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		timer.KindShortBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		timer.KindLongBreak:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	}
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	taskStyle   = lipgloss.NewStyle().Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	boxStyle    = lipgloss.NewStyle().Padding(1, 2)
)

// Model is the bubbletea model wrapping an Application.
type Model struct {
	app     *app.Application
	reload  func() (*config.Config, error)
	onFrame func(app.Status)
	now     func() time.Time

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	status  app.Status
}

// New returns a Model. reload re-reads the configuration; onFrame, if not
// nil, receives a snapshot after every frame.
func New(a *app.Application, reload func() (*config.Config, error), onFrame func(app.Status)) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		app:     a,
		reload:  reload,
		onFrame: onFrame,
		now:     time.Now,
		keys:    keys,
		help:    help.New(),
		spinner: sp,
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frame(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.advance(time.Time(msg))
		return m, frame()

	case ReloadMsg:
		m.doReload()
		m.advance(m.now())
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		wall := m.now()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.StartStop):
			if timer.Running(m.app.Phase()) {
				m.app.Stop()
			} else {
				m.app.Start(wall)
			}
		case key.Matches(msg, m.keys.PauseResume):
			if m.app.Paused() {
				m.app.Resume(wall)
			} else {
				m.app.Pause(wall)
			}
		case key.Matches(msg, m.keys.Skip):
			m.app.Skip(wall)
		case key.Matches(msg, m.keys.Reload):
			m.doReload()
		case key.Matches(msg, m.keys.NextTask):
			m.app.PickAnother(wall)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.advance(wall)
		return m, nil
	}
	return m, nil
}

func (m *Model) advance(wall time.Time) {
	m.app.Frame(wall)
	m.status = m.app.Snapshot(wall)
	if m.onFrame != nil {
		m.onFrame(m.status)
	}
}

func (m *Model) doReload() {
	if m.status.Syncing {
		appLog.Debug("reload requested while a refresh is in flight; superseding it")
	}
	if m.reload == nil {
		m.app.Refresh()
		return
	}
	cfg, err := m.reload()
	if err != nil {
		appLog.Error("config reload failed; refreshing with previous settings", err)
		m.app.Refresh()
		return
	}
	m.app.Reload(cfg)
}

func (m Model) View() string {
	st := m.status
	var b strings.Builder

	heading := phaseStyles[st.Phase].Render(fmt.Sprintf("%s : %s", st.Phase, formatRemaining(st.Remaining)))
	b.WriteString(heading)
	if st.Paused {
		b.WriteString("  " + pausedStyle.Render("(paused)"))
	}
	if st.Syncing {
		b.WriteString("  " + m.spinner.View() + labelStyle.Render(" calendar"))
	}
	b.WriteString("\n\n")

	if t := st.Task; t != nil {
		b.WriteString(labelStyle.Render("E: ") + taskStyle.Render(t.Summary) + "\n")
		if t.Starts != nil {
			b.WriteString(labelStyle.Render("S: ") + t.Starts.Local().Format(time.DateTime) + "\n")
		}
		if t.Due != nil {
			b.WriteString(labelStyle.Render("D: ") + t.Due.Local().Format(time.DateTime) + "\n")
		}
	} else {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%d tasks", len(st.Tasks))) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return boxStyle.Render(b.String())
}

// formatRemaining renders d rounded to the second. An overrun deadline
// shows as zero until the next frame advances the phase.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}
