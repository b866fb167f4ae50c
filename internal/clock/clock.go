package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts the time source so jobs and checks can be tested
// against a fixed point in time.
type Clock interface {
	Now() time.Time
	// Today returns midnight UTC of the current day.
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now().UTC())
}

// Midnight truncates t to the start of its UTC day.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func New() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
