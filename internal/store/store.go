// Package store executes validated SQL against the sales database and
// returns tabular results.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the scalar type of a result value
type Kind string

const (
	KindNull   Kind = "null"
	KindText   Kind = "text"
	KindNumber Kind = "number"
)

// Value is a typed scalar in a result row
type Value struct {
	Kind   Kind    `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Number float64 `json:"number,omitempty"`
}

// Null returns the null value
func Null() Value {
	return Value{Kind: KindNull}
}

// Text returns a text value
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// String renders the value for display and export
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// Row maps a column name to its value for one result row
type Row map[string]Value

// ResultSet is the tabular output of executing a query. Columns preserves
// the query's projection order; Rows preserves the store's return order.
// A ResultSet belongs to a single request and is never persisted.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the result set has no rows
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// FirstNumericColumn returns the first column, in projection order, whose
// first non-null value is numeric. The second return is false when no such
// column exists.
func (rs *ResultSet) FirstNumericColumn() (string, bool) {
	if rs.Empty() {
		return "", false
	}
	for _, col := range rs.Columns {
		for _, row := range rs.Rows {
			v, ok := row[col]
			if !ok || v.Kind == KindNull {
				continue
			}
			if v.Kind == KindNumber {
				return col, true
			}
			break
		}
	}
	return "", false
}

// Store executes a validated query against a relational backend.
// Callers must pass only sanitized statements; read-only enforcement
// happens upstream and is not re-validated here.
type Store interface {
	Execute(ctx context.Context, safeQuery string) (*ResultSet, error)
	Ping(ctx context.Context) error
	Close() error
}

// normalize converts a driver value into the typed scalar model
func normalize(raw interface{}) Value {
	switch typed := raw.(type) {
	case nil:
		return Null()
	case []byte:
		return Text(string(typed))
	case string:
		return Text(typed)
	case int64:
		return Number(float64(typed))
	case float64:
		return Number(typed)
	case bool:
		return Text(strconv.FormatBool(typed))
	case time.Time:
		return Text(typed.Format(time.RFC3339))
	default:
		return Text(fmt.Sprintf("%v", typed))
	}
}
