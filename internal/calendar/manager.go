// Package calendar keeps the list of open to-do items pulled from remote
// calendars. Refreshes run in the background; the owner polls for the
// result from its own loop and is never blocked by network I/O.
package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"tasktimer/internal/caldav"
	"tasktimer/internal/ics"
	appLog "tasktimer/internal/log"
	"tasktimer/internal/model"
)

// Settings lists the calendar endpoints and the credentials used for all
// of them.
type Settings struct {
	URLs     []string `yaml:"urls" json:"urls"`
	Username string   `yaml:"username,omitempty" json:"username,omitempty"`
	Password string   `yaml:"password,omitempty" json:"-"`
	Token    string   `yaml:"token,omitempty" json:"-"`
}

// CredentialsFor picks Basic auth when both username and password are set,
// then a bearer token, then an empty (anonymous) bearer token.
func CredentialsFor(s Settings) caldav.Credentials {
	switch {
	case s.Username != "" && s.Password != "":
		return caldav.Credentials{Kind: caldav.AuthBasic, Username: s.Username, Password: s.Password}
	case s.Token != "":
		return caldav.Credentials{Kind: caldav.AuthBearer, Token: s.Token}
	default:
		return caldav.Credentials{Kind: caldav.AuthBearer}
	}
}

// Fetcher is the calendar server client. *caldav.Client implements it.
type Fetcher interface {
	ListCalendars(ctx context.Context, endpoint string, creds caldav.Credentials) ([]caldav.Calendar, error)
	ListTodos(ctx context.Context, cal caldav.Calendar, creds caldav.Credentials) ([]ics.RawItem, error)
}

// State is either InFlight or Ready.
type State interface {
	syncState()
}

// InFlight means a refresh has been started and not yet collected.
type InFlight struct{}

// Ready holds the complete, filtered result of the last refresh.
type Ready struct {
	Tasks []model.Task
}

func (InFlight) syncState() {}
func (Ready) syncState()    {}

type result struct {
	tasks    []model.Task
	panicked any
}

// Manager owns the sync state. It is not safe for concurrent use: a single
// goroutine calls Reset and Poll and reads the state.
type Manager struct {
	fetcher Fetcher
	state   State

	// pending receives the outcome of the current generation only.
	// Superseded generations write into channels nobody reads.
	pending    chan result
	cancel     context.CancelFunc
	generation uint64

	last []model.Task
}

// NewManager returns a Manager in the Ready state with no tasks.
func NewManager(f Fetcher) *Manager {
	return &Manager{
		fetcher: f,
		state:   Ready{},
	}
}

// Reset starts a new refresh generation and moves to InFlight. A refresh
// still running from an earlier generation is cancelled through its
// context and its result, if it ever arrives, is discarded.
func (m *Manager) Reset(s Settings) {
	if m.cancel != nil {
		m.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan result, 1)

	m.generation++
	m.pending = ch
	m.cancel = cancel
	m.state = InFlight{}

	s.URLs = slices.Clone(s.URLs)
	id := uuid.NewString()
	f := m.fetcher
	gen := m.generation

	appLog.Info("calendar refresh started", "refresh_id", id, "generation", gen, "urls", len(s.URLs))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{panicked: r}
			}
		}()
		ch <- result{tasks: refresh(ctx, f, s, id)}
	}()
}

// Poll collects the current generation's result if it is done. It never
// blocks. A refresh that panicked is unrecoverable and panics here.
func (m *Manager) Poll() {
	if _, ok := m.state.(InFlight); !ok || m.pending == nil {
		return
	}
	select {
	case res := <-m.pending:
		m.pending = nil
		m.cancel()
		m.cancel = nil
		if res.panicked != nil {
			panic(fmt.Sprintf("calendar: refresh generation %d died: %v", m.generation, res.panicked))
		}
		m.state = Ready{Tasks: res.tasks}
		m.last = res.tasks
	default:
	}
}

// State returns the current sync state.
func (m *Manager) State() State {
	return m.state
}

// Syncing reports whether a refresh is in flight.
func (m *Manager) Syncing() bool {
	_, ok := m.state.(InFlight)
	return ok
}

// Tasks returns the most recent complete task list, even while a newer
// refresh is in flight.
func (m *Manager) Tasks() []model.Task {
	return m.last
}

// Generation returns the number of refreshes started so far.
func (m *Manager) Generation() uint64 {
	return m.generation
}

func refresh(ctx context.Context, f Fetcher, s Settings, id string) []model.Task {
	start := time.Now()
	creds := CredentialsFor(s)
	tasks := make([]model.Task, 0)
	skipped := 0

	for _, endpoint := range s.URLs {
		cals, err := f.ListCalendars(ctx, endpoint, creds)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			appLog.Error("calendar: listing calendars failed", err, "refresh_id", id)
			continue
		}
		for _, cal := range cals {
			items, err := f.ListTodos(ctx, cal, creds)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				appLog.Error("calendar: listing todos failed", err, "refresh_id", id, "calendar", cal.Name)
				continue
			}
			for _, item := range items {
				props := item.Map()
				if !Keep(props) {
					skipped++
					continue
				}
				tasks = append(tasks, ToTask(props))
			}
		}
	}

	appLog.Info("calendar refresh finished",
		"refresh_id", id,
		"tasks", len(tasks),
		"skipped", skipped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return tasks
}
