package qtm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransitionRule   = errors.New("invalid transition rule")
	ErrTapeLengthMismatch      = errors.New("tape length mismatch")
	ErrIndexOutOfRange         = errors.New("index out of range")
	ErrDegenerateSuperposition = errors.New("degenerate superposition")
	ErrInvalidGeometry         = errors.New("invalid machine geometry")
	ErrNotInitialized          = errors.New("machine not initialized")
	ErrHalted                  = errors.New("machine halted")
)

/*
RuleError reports a transition rule that falls outside the declared domains
of the machine. Position is the rule's offset in the collection handed to the
builder (or the record number when it came from a parsed file).
*/
type RuleError struct {
	Position int
	Rule     TransitionRule
	Reason   string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d %v: %s", e.Position, e.Rule, e.Reason)
}

func (e *RuleError) Unwrap() error {
	return ErrInvalidTransitionRule
}
