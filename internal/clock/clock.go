// Package clock supplies the trusted "now" used for departure projection.
// The offset comes from an external clock-synchronization probe.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the host clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Offset corrects a base clock by an offset that can be updated at runtime.
type Offset struct {
	base   Clock
	offset atomic.Int64
}

func NewOffset(base Clock) *Offset {
	if base == nil {
		base = System{}
	}
	return &Offset{base: base}
}

func (o *Offset) Now() time.Time {
	return o.base.Now().Add(o.Offset())
}

// SetOffset stores the difference between the trusted time and the host clock.
func (o *Offset) SetOffset(d time.Duration) {
	o.offset.Store(int64(d))
}

func (o *Offset) Offset() time.Duration {
	return time.Duration(o.offset.Load())
}

// Fixed always returns the same instant. Used in tests.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
