// Package app drives the timer and task selection from a single goroutine.
// A renderer calls Frame on every redraw and forwards user actions; all
// state lives here and is only touched from that goroutine.
package app

import (
	"math/rand/v2"
	"time"

	"tasktimer/internal/calendar"
	"tasktimer/internal/config"
	appLog "tasktimer/internal/log"
	"tasktimer/internal/model"
	"tasktimer/internal/notify"
	"tasktimer/internal/selector"
	"tasktimer/internal/timer"
)

// NotificationTitle is the title of every phase-change notification.
const NotificationTitle = "Pomodoro timer"

// Calendar is the sync manager as seen by the application.
// *calendar.Manager implements it.
type Calendar interface {
	Reset(s calendar.Settings)
	Poll()
	State() calendar.State
	Syncing() bool
	Tasks() []model.Task
}

// Application owns the phase, the calendar sync state, the pause clock and
// the task currently shown.
type Application struct {
	cfg      *config.Config
	phase    timer.Phase
	calendar Calendar
	clock    Clock
	shown    *model.Task
	notifier notify.Notifier
	rng      *rand.Rand
}

// New returns an idle Application. rng may be nil to use the global source.
func New(cfg *config.Config, cal Calendar, n notify.Notifier, rng *rand.Rand) *Application {
	return &Application{
		cfg:      cfg,
		phase:    timer.Idle{},
		calendar: cal,
		notifier: n,
		rng:      rng,
	}
}

// Frame runs one tick at wall-clock time wall. While paused only the
// calendar is polled; timer time does not advance.
func (a *Application) Frame(wall time.Time) {
	if a.clock.Paused() {
		a.calendar.Poll()
		return
	}
	a.Tick(a.clock.Now(wall))
}

// Tick advances the phase, collects a finished calendar refresh, and shows
// a task if the user is working and none is shown yet. now must already be
// pause-adjusted.
func (a *Application) Tick(now time.Time) {
	if next, changed := timer.Tick(a.phase, a.cfg.Timer, now, false); changed {
		a.setPhase(next)
	}

	a.calendar.Poll()

	if !timer.IsWorking(a.phase) || a.shown != nil {
		return
	}
	if r, ok := a.calendar.State().(calendar.Ready); ok && len(r.Tasks) > 0 {
		a.choose(r.Tasks, now)
	}
}

func (a *Application) setPhase(next timer.Phase) {
	prev := a.phase
	a.phase = next
	if !timer.Running(prev) && !timer.Running(next) {
		return
	}
	appLog.Info("phase changed", "from", prev.Kind(), "to", next.Kind())
	notify.Send(a.notifier, NotificationTitle, string(next.Kind()))
}

func (a *Application) choose(tasks []model.Task, now time.Time) {
	t, ok := selector.Choose(tasks, now, a.rng)
	if !ok {
		a.shown = nil
		return
	}
	a.shown = &t
	appLog.Debug("task chosen", "uid", t.UID, "summary", t.Summary)
}

// Start begins a new work cycle from any phase.
func (a *Application) Start(wall time.Time) {
	a.setPhase(timer.Start(a.clock.Now(wall)))
}

// Stop returns to Idle.
func (a *Application) Stop() {
	a.setPhase(timer.Stop())
}

// Skip ends the current phase immediately. It does nothing while Idle.
func (a *Application) Skip(wall time.Time) {
	if next, changed := timer.Tick(a.phase, a.cfg.Timer, a.clock.Now(wall), true); changed {
		a.setPhase(next)
	}
}

func (a *Application) Pause(wall time.Time)  { a.clock.Pause(wall) }
func (a *Application) Resume(wall time.Time) { a.clock.Resume(wall) }

// Refresh starts a new calendar refresh with the current settings.
func (a *Application) Refresh() {
	a.calendar.Reset(a.cfg.Calendar)
}

// Reload swaps in cfg and starts a calendar refresh with it.
func (a *Application) Reload(cfg *config.Config) {
	a.cfg = cfg
	a.Refresh()
}

// PickAnother re-runs task selection over the last complete task list,
// whatever is currently shown.
func (a *Application) PickAnother(wall time.Time) {
	a.choose(a.calendar.Tasks(), a.clock.Now(wall))
}

func (a *Application) Phase() timer.Phase     { return a.phase }
func (a *Application) Config() *config.Config { return a.cfg }
func (a *Application) Paused() bool           { return a.clock.Paused() }

// Shown returns the task currently shown, if any.
func (a *Application) Shown() (model.Task, bool) {
	if a.shown == nil {
		return model.Task{}, false
	}
	return *a.shown, true
}

// Status is a read-only view of the application for renderers.
type Status struct {
	Now       time.Time
	Phase     timer.Kind
	Remaining time.Duration
	Paused    bool
	Syncing   bool
	Task      *model.Task
	Tasks     []model.Task
}

// Snapshot captures the state at wall. The returned value shares no
// mutable memory with the Application.
func (a *Application) Snapshot(wall time.Time) Status {
	now := a.clock.Now(wall)
	s := Status{
		Now:       now,
		Phase:     a.phase.Kind(),
		Remaining: timer.Remaining(a.phase, a.cfg.Timer, now),
		Paused:    a.clock.Paused(),
		Syncing:   a.calendar.Syncing(),
		Tasks:     append([]model.Task(nil), a.calendar.Tasks()...),
	}
	if a.shown != nil {
		t := *a.shown
		s.Task = &t
	}
	return s
}
