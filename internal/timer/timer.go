package timer

import (
	"fmt"
	"time"
)

// Settings holds the interval lengths in seconds and the number of work
// cycles between long breaks.
type Settings struct {
	WorkTime         float64 `yaml:"work_time" json:"work_time"`
	ShortRestTime    float64 `yaml:"short_rest_time" json:"short_rest_time"`
	LongRestTime     float64 `yaml:"long_rest_time" json:"long_rest_time"`
	LongRestInterval uint8   `yaml:"long_rest_interval" json:"long_rest_interval"`
}

// DefaultSettings returns the classic 25/10/30 minute schedule with a long
// break every fourth cycle.
func DefaultSettings() Settings {
	return Settings{
		WorkTime:         1500,
		ShortRestTime:    600,
		LongRestTime:     1800,
		LongRestInterval: 4,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Kind is the tag of a Phase.
type Kind string

const (
	KindIdle       Kind = "Idle"
	KindWorking    Kind = "Working"
	KindShortBreak Kind = "ShortBreak"
	KindLongBreak  Kind = "LongBreak"
)

// Phase is one of Idle, Working, ShortBreak or LongBreak. The set is closed.
type Phase interface {
	Kind() Kind
	phase()
}

type Idle struct{}

// Working counts the work cycles completed since the last long break.
type Working struct {
	Cycles    uint8
	StartedAt time.Time
}

type ShortBreak struct {
	Cycles    uint8
	StartedAt time.Time
}

// LongBreak carries no counter; the next Working starts again at zero.
type LongBreak struct {
	StartedAt time.Time
}

func (Idle) Kind() Kind       { return KindIdle }
func (Working) Kind() Kind    { return KindWorking }
func (ShortBreak) Kind() Kind { return KindShortBreak }
func (LongBreak) Kind() Kind  { return KindLongBreak }

func (Idle) phase()       {}
func (Working) phase()    {}
func (ShortBreak) phase() {}
func (LongBreak) phase()  {}

// Start begins a fresh work cycle regardless of the current phase.
func Start(now time.Time) Phase {
	return Working{Cycles: 0, StartedAt: now}
}

// Stop returns to Idle regardless of the current phase.
func Stop() Phase {
	return Idle{}
}

// Tick advances p if its interval has elapsed at now, or unconditionally
// when force is set. Idle never advances. The second result reports
// whether the phase changed.
func Tick(p Phase, s Settings, now time.Time, force bool) (Phase, bool) {
	switch p := p.(type) {
	case nil, Idle:
		return Idle{}, false
	case Working:
		if !force && now.Sub(p.StartedAt) < seconds(s.WorkTime) {
			return p, false
		}
		cycles := p.Cycles + 1
		if cycles >= s.LongRestInterval {
			return LongBreak{StartedAt: now}, true
		}
		return ShortBreak{Cycles: cycles, StartedAt: now}, true
	case ShortBreak:
		if !force && now.Sub(p.StartedAt) < seconds(s.ShortRestTime) {
			return p, false
		}
		return Working{Cycles: p.Cycles, StartedAt: now}, true
	case LongBreak:
		if !force && now.Sub(p.StartedAt) < seconds(s.LongRestTime) {
			return p, false
		}
		return Working{Cycles: 0, StartedAt: now}, true
	default:
		panic(fmt.Sprintf("timer: unknown phase %T", p))
	}
}

// Remaining returns the signed time left in the current phase. It is
// negative once the deadline has passed without a tick, and zero when Idle.
func Remaining(p Phase, s Settings, now time.Time) time.Duration {
	switch p := p.(type) {
	case nil, Idle:
		return 0
	case Working:
		return p.StartedAt.Add(seconds(s.WorkTime)).Sub(now)
	case ShortBreak:
		return p.StartedAt.Add(seconds(s.ShortRestTime)).Sub(now)
	case LongBreak:
		return p.StartedAt.Add(seconds(s.LongRestTime)).Sub(now)
	default:
		panic(fmt.Sprintf("timer: unknown phase %T", p))
	}
}

// Running reports whether p is anything other than Idle.
func Running(p Phase) bool {
	_, idle := p.(Idle)
	return p != nil && !idle
}

// IsWorking reports whether p is a Working phase.
func IsWorking(p Phase) bool {
	_, ok := p.(Working)
	return ok
}
