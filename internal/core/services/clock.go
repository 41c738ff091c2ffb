package services

import (
	"time"

	"github.com/artisnova/aria/internal/core/ports/driven"
)

// SystemClock is the wall-clock implementation of driven.Clock.
type SystemClock struct{}

var _ driven.Clock = SystemClock{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
