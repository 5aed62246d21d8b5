package report

import (
	"fmt"
	"strings"

	"github.com/mrsinham/echoreport/internal/fields"
)

// Policy decides whether a report may be generated from a session.
type Policy int

const (
	// PolicyLenient generates from any state, unset fields use fallbacks.
	PolicyLenient Policy = iota
	// PolicyStrict requires every section to have been submitted.
	PolicyStrict
)

// String returns the string representation of a Policy.
func (p Policy) String() string {
	switch p {
	case PolicyLenient:
		return "lenient"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return PolicyLenient, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyLenient, fmt.Errorf("invalid policy %q (valid: lenient, strict)", s)
	}
}

// IncompleteError lists the sections a strict policy is still waiting for.
type IncompleteError struct {
	Missing []fields.Section
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = s.Title()
	}
	return "cannot generate report, sections not submitted: " + strings.Join(names, ", ")
}

// Check returns an *IncompleteError when the policy forbids generating now.
func (p Policy) Check(src Source) error {
	if p != PolicyStrict {
		return nil
	}
	var missing []fields.Section
	for _, sec := range fields.Sections() {
		if !src.Submitted(sec) {
			missing = append(missing, sec)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}
