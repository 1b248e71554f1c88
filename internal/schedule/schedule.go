// Package schedule triggers periodic calendar reloads on a cron spec.
package schedule

import (
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "tasktimer/internal/log"
)

// Reloader runs a callback on a cron schedule. The callback runs on the
// cron goroutine, so it should only hand the request to the owner of the
// application state.
type Reloader struct {
	cron *cron.Cron
	spec string
}

// NewReloader parses spec (standard five-field cron syntax, or descriptors
// such as "@every 15m") and registers fn. The schedule does not run until
// Start is called.
func NewReloader(spec string, fn func()) (*Reloader, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		appLog.Debug("scheduled calendar reload", "spec", spec)
		fn()
	}); err != nil {
		return nil, fmt.Errorf("schedule: invalid refresh spec %q: %w", spec, err)
	}
	return &Reloader{cron: c, spec: spec}, nil
}

func (r *Reloader) Start() {
	appLog.Info("calendar reload schedule started", "spec", r.spec)
	r.cron.Start()
}

// Stop halts the schedule and waits for a running callback to return.
func (r *Reloader) Stop() {
	<-r.cron.Stop().Done()
}
