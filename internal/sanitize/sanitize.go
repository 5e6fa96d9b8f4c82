// Package sanitize validates raw model-generated SQL into safe, bounded,
// read-only statements.
//
// The default implementation is a keyword denylist plus an unconditional
// row cap, not a SQL parser. It trades false positives (a column literally
// named "update_count" is rejected) for simplicity, and it is not
// injection-proof. This is a documented limitation of the approach; a
// stricter parser-based Validator can be substituted without touching the
// orchestrator.
package sanitize

import (
	"fmt"
	"strings"
)

// Validator validates and normalizes a candidate SQL statement.
// Implementations return the statement that may be executed, or an error
// describing why the candidate was rejected.
type Validator interface {
	Sanitize(candidate string) (string, error)
}

// Reason classifies why a candidate statement was rejected
type Reason string

const (
	ReasonNotASelect       Reason = "not_a_select"
	ReasonForbiddenKeyword Reason = "forbidden_keyword"
)

// UnsafeQueryError is returned when a candidate statement violates the
// validator's invariants
type UnsafeQueryError struct {
	Reason  Reason
	Keyword string // set when Reason is ReasonForbiddenKeyword
}

// Error implements the error interface
func (e *UnsafeQueryError) Error() string {
	switch e.Reason {
	case ReasonForbiddenKeyword:
		return fmt.Sprintf("unsafe query: contains forbidden keyword %q", e.Keyword)
	default:
		return "unsafe query: only SELECT statements are allowed"
	}
}

// Denylist is the default Validator: coarse case-insensitive keyword
// filtering plus a hard LIMIT cap.
type Denylist struct {
	ForbiddenKeywords []string
	RowCap            int
}

// NewDenylist creates a denylist validator with default settings
func NewDenylist() *Denylist {
	return &Denylist{
		ForbiddenKeywords: []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER"},
		RowCap:            100,
	}
}

// Sanitize validates the candidate statement and returns it with the row
// cap appended when missing. The original casing is preserved; lowering is
// used for comparison only. Sanitize is idempotent once a LIMIT clause is
// present.
func (d *Denylist) Sanitize(candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	lowered := strings.ToLower(trimmed)

	if !strings.HasPrefix(lowered, "select") {
		return "", &UnsafeQueryError{Reason: ReasonNotASelect}
	}

	for _, keyword := range d.ForbiddenKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return "", &UnsafeQueryError{Reason: ReasonForbiddenKeyword, Keyword: keyword}
		}
	}

	if !strings.Contains(lowered, "limit") {
		return fmt.Sprintf("%s LIMIT %d", trimmed, d.RowCap), nil
	}

	return trimmed, nil
}
