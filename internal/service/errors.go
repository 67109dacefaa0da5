// Package service implements the booking engine's operations: booking
// creation and state transitions, payment link validation, gateway
// result reconciliation and the expiration sweeper.  Each operation is
// one transactional unit of work; collaborators are passed in through
// constructors as narrow interfaces.
package service

import "fmt"

// InvalidStateError marks a business-rule violation: bad dates, an
// illegal status transition, an expired token or an over-capacity guest
// list.  These are expected outcomes, logged at low severity and
// surfaced to the caller with enough detail to act.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

// invalidState builds an InvalidStateError from a format string.
func invalidState(format string, args ...interface{}) error {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}
