// Package clock abstracts time so scoring runs can be pinned in tests.
package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current time to code that would otherwise call
// time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return NewSystemClock() }),
)
