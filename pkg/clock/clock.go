// Package clock abstracts wall-clock reads so date-sensitive logic can be
// tested deterministically. Handlers take one Now() snapshot per request and
// pass it down; domain code never reads time.Now directly.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. For tests.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }

// At is shorthand for a Fixed clock at t.
func At(t time.Time) Fixed { return Fixed{T: t} }
