package notify

import (
	"github.com/gen2brain/beeep"

	appLog "tasktimer/internal/log"
)

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop shows notifications through the platform's notification service.
type Desktop struct {
	// Icon is an optional path to an icon file.
	Icon string
}

func (d Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, d.Icon)
}

// Log writes notifications to the application log instead of the desktop.
// It is used in headless mode and when notifications are disabled.
type Log struct{}

func (Log) Notify(title, body string) error {
	appLog.Info("notification", "title", title, "body", body)
	return nil
}

// Send delivers through n and logs a failure instead of returning it.
func Send(n Notifier, title, body string) {
	if n == nil {
		return
	}
	if err := n.Notify(title, body); err != nil {
		appLog.Error("notification failed", err, "title", title, "body", body)
	}
}
