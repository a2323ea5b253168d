package dialer

import "autodialer/internal/calls"

// Observer is told about every attempt and every finalized record.
// Calls happen with the session lock held, so implementations must not call
// back into the Session.
type Observer interface {
	AttemptMade(mode calls.Mode, outcome calls.Outcome)
	CallFinalized(rec calls.CallRecord)
}

type noopObserver struct{}

func (noopObserver) AttemptMade(calls.Mode, calls.Outcome) {}
func (noopObserver) CallFinalized(calls.CallRecord)        {}
