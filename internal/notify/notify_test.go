package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls [][2]string
	err   error
}

func (r *recorder) Notify(title, body string) error {
	r.calls = append(r.calls, [2]string{title, body})
	return r.err
}

func TestSendSwallowsErrors(t *testing.T) {
	r := &recorder{err: errors.New("dbus unavailable")}
	assert.NotPanics(t, func() { Send(r, "Pomodoro timer", "Working") })
	assert.Equal(t, [][2]string{{"Pomodoro timer", "Working"}}, r.calls)
}

func TestSendNilNotifier(t *testing.T) {
	assert.NotPanics(t, func() { Send(nil, "t", "b") })
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, Log{}.Notify("t", "b"))
}
