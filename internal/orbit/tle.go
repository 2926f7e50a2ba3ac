// Package orbit wraps github.com/akhenakh/sgp4 behind the minimal contract
// the rest of the pipeline needs: geodetic/ECEF position and velocity at an
// arbitrary time, and the satellite's orbital period. It treats the
// predictor as a pure function of time, cached at 1-second quantisation.
package orbit

import (
	"fmt"
	"strings"

	"github.com/akhenakh/sgp4"
)

// TLE is an immutable, named two-line element set. Line1 and Line2 are kept
// verbatim (not re-serialised) per the bit-exact input requirement; Name is
// the satellite identifier supplied alongside them.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// ErrInvalidTLE is returned by Validate (and so by parseSGP4) when a TLE fails the
// structural checks required at ingestion.
type ErrInvalidTLE struct {
	Reason string
}

func (e *ErrInvalidTLE) Error() string { return "invalid TLE: " + e.Reason }

// Validate checks the structural invariants placed on TLE input:
// both lines at least 69 characters, line 1 starting "1 " and line 2
// starting "2 ". It does not attempt to validate checksums or orbital
// element ranges; that's the propagator's job at parse time.
func (t TLE) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ErrInvalidTLE{Reason: "name must not be empty"}
	}
	if len(t.Line1) < 69 {
		return &ErrInvalidTLE{Reason: fmt.Sprintf("line1 too short: %d chars", len(t.Line1))}
	}
	if len(t.Line2) < 69 {
		return &ErrInvalidTLE{Reason: fmt.Sprintf("line2 too short: %d chars", len(t.Line2))}
	}
	if !strings.HasPrefix(t.Line1, "1 ") {
		return &ErrInvalidTLE{Reason: "line1 must start with \"1 \""}
	}
	if !strings.HasPrefix(t.Line2, "2 ") {
		return &ErrInvalidTLE{Reason: "line2 must start with \"2 \""}
	}
	return nil
}

// parseSGP4 validates t and hands it to sgp4.ParseTLE, which performs full
// orbital-element parsing and range checks.
func parseSGP4(t TLE) (*sgp4.TLE, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	raw := t.Name + "\n" + t.Line1 + "\n" + t.Line2
	parsed, err := sgp4.ParseTLE(raw)
	if err != nil {
		return nil, &ErrInvalidTLE{Reason: err.Error()}
	}
	return parsed, nil
}
