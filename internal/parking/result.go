package parking

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput  = errors.New("malformed input")
	ErrInvalidDuration = errors.New("parking duration out of range")
)

type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictYes
	VerdictNo
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "OK"
	case VerdictYes:
		return "YES"
	case VerdictNo:
		return "NO"
	default:
		return "ERROR"
	}
}

// Result is the outcome of one input line.
type Result struct {
	Line         int
	Kind         CommandKind
	Registration Registration
	Verdict      Verdict
	// Err is set only for VerdictError and wraps ErrMalformedInput or
	// ErrInvalidDuration.
	Err error
	// Rollover reports that this line advanced the ledger to the next day.
	Rollover bool
	// Partition is where a payment landed; Absorbed marks a payment that
	// left the ledger unchanged.
	Partition Partition
	Absorbed  bool
	// Clock is the session clock once the line has been handled.
	Clock MinuteOfDay
}

func (r Result) String() string {
	return fmt.Sprintf("%s %d", r.Verdict, r.Line)
}

func lineError(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}
