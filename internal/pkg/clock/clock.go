package clock

import "time"

// Clocker is the single source of "now" for code that reasons about expiry.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock.
type TimeClocker struct{}

// New returns the production Clocker.
func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// OrSystem returns c, or the system clock when c is nil. Constructors take
// an optional Clocker and pass it through here.
func OrSystem(c Clocker) Clocker {
	if c == nil {
		return New()
	}
	return c
}
