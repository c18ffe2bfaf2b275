package donation

// ValidationError reports a missing or blank required field at creation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StateError reports an operation whose precondition on the donation's
// current status or ownership does not hold: reserving a non-AVAILABLE
// donation, self-reservation, deciding a non-RESERVED donation, cancelling
// a non-AVAILABLE donation, or losing a concurrent transition race.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }
