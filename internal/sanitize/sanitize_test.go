// internal/sanitize/sanitize_test.go
package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDenylist tests creation of the default denylist validator
func TestNewDenylist(t *testing.T) {
	d := NewDenylist()

	require.NotNil(t, d)
	assert.Equal(t, 100, d.RowCap)
	assert.Contains(t, d.ForbiddenKeywords, "DROP")
	assert.Contains(t, d.ForbiddenKeywords, "DELETE")
	assert.Contains(t, d.ForbiddenKeywords, "UPDATE")
	assert.Contains(t, d.ForbiddenKeywords, "INSERT")
	assert.Contains(t, d.ForbiddenKeywords, "ALTER")
}

// TestSanitizeRejectsNonSelect tests the SELECT-only invariant
func TestSanitizeRejectsNonSelect(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
	}{
		{name: "empty string", candidate: ""},
		{name: "whitespace only", candidate: "   \n\t "},
		{name: "show tables", candidate: "SHOW TABLES"},
		{name: "with clause", candidate: "WITH t AS (SELECT 1) SELECT * FROM t"},
		{name: "explain", candidate: "EXPLAIN SELECT * FROM ventas"},
		{name: "prose from the model", candidate: "Here is your query: SELECT * FROM ventas"},
	}

	d := NewDenylist()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Sanitize(tt.candidate)
			require.Error(t, err)

			var unsafeErr *UnsafeQueryError
			require.ErrorAs(t, err, &unsafeErr)
			assert.Equal(t, ReasonNotASelect, unsafeErr.Reason)
		})
	}
}

// TestSanitizeRejectsForbiddenKeywords tests the denylist invariant
func TestSanitizeRejectsForbiddenKeywords(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		keyword   string
	}{
		{
			name:      "drop after select",
			candidate: "SELECT 1; DROP TABLE ventas",
			keyword:   "DROP",
		},
		{
			name:      "lowercase delete",
			candidate: "select * from ventas; delete from ventas",
			keyword:   "DELETE",
		},
		{
			name:      "mixed case UpDaTe",
			candidate: "SELECT 1; UpDaTe ventas SET precio = 0",
			keyword:   "UPDATE",
		},
		{
			name:      "insert subquery",
			candidate: "SELECT * FROM ventas WHERE id IN (INSERT INTO x VALUES (1))",
			keyword:   "INSERT",
		},
		{
			name:      "alter statement",
			candidate: "SELECT 1; ALTER TABLE ventas ADD COLUMN descuento int",
			keyword:   "ALTER",
		},
		{
			name:      "first keyword in scan order wins",
			candidate: "SELECT 1; ALTER TABLE ventas DROP COLUMN precio",
			keyword:   "DROP",
		},
		{
			name:      "false positive by design - column named update_count",
			candidate: "SELECT update_count FROM ventas",
			keyword:   "UPDATE",
		},
	}

	d := NewDenylist()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Sanitize(tt.candidate)
			require.Error(t, err)

			var unsafeErr *UnsafeQueryError
			require.ErrorAs(t, err, &unsafeErr)
			assert.Equal(t, ReasonForbiddenKeyword, unsafeErr.Reason)
			assert.Equal(t, tt.keyword, unsafeErr.Keyword)
		})
	}
}

// TestSanitizeAppendsRowCap tests the LIMIT cap invariant
func TestSanitizeAppendsRowCap(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{
			name:      "no limit gets the cap",
			candidate: "SELECT * FROM ventas",
			want:      "SELECT * FROM ventas LIMIT 100",
		},
		{
			name:      "lowercase select preserved",
			candidate: "select producto, cantidad from ventas",
			want:      "select producto, cantidad from ventas LIMIT 100",
		},
		{
			name:      "surrounding whitespace trimmed",
			candidate: "  SELECT * FROM ventas\n",
			want:      "SELECT * FROM ventas LIMIT 100",
		},
		{
			name:      "existing uppercase limit unchanged",
			candidate: "SELECT * FROM ventas LIMIT 5",
			want:      "SELECT * FROM ventas LIMIT 5",
		},
		{
			name:      "existing lowercase limit unchanged",
			candidate: "select * from ventas limit 20",
			want:      "select * from ventas limit 20",
		},
	}

	d := NewDenylist()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Sanitize(tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSanitizeIdempotent tests that a sanitized statement is a fixed point
func TestSanitizeIdempotent(t *testing.T) {
	d := NewDenylist()

	inputs := []string{
		"SELECT * FROM ventas",
		"select vendedor, sum(cantidad) from ventas group by vendedor",
		"SELECT ciudad FROM ventas LIMIT 7",
	}

	for _, input := range inputs {
		once, err := d.Sanitize(input)
		require.NoError(t, err)

		twice, err := d.Sanitize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

// TestSanitizeCustomConfig tests a validator with a custom cap and keyword set
func TestSanitizeCustomConfig(t *testing.T) {
	d := &Denylist{
		ForbiddenKeywords: []string{"TRUNCATE"},
		RowCap:            10,
	}

	got, err := d.Sanitize("SELECT * FROM ventas")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ventas LIMIT 10", got)

	_, err = d.Sanitize("SELECT 1; TRUNCATE ventas")
	require.Error(t, err)

	// DROP is allowed under the custom keyword set
	got, err = d.Sanitize("SELECT drop_rate FROM ventas LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT drop_rate FROM ventas LIMIT 1", got)
}

// BenchmarkSanitize benchmarks sanitizing a typical statement
func BenchmarkSanitize(b *testing.B) {
	d := NewDenylist()
	candidate := "SELECT producto, SUM(cantidad) FROM ventas GROUP BY producto ORDER BY 2 DESC"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Sanitize(candidate)
	}
}
