// internal/semantic/postgres_test.go
package semantic

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindSimilar tests example retrieval by embedding similarity
func TestFindSimilar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"question", "sql_text", "similarity"}).
		AddRow("ventas por ciudad", "SELECT ciudad, SUM(cantidad) FROM ventas GROUP BY ciudad", 0.95).
		AddRow("ventas por mes", "SELECT fecha, SUM(cantidad) FROM ventas GROUP BY fecha", 0.87)

	mock.ExpectQuery("SELECT question, sql_text").
		WithArgs(sqlmock.AnyArg(), 3).
		WillReturnRows(rows)

	mapper := NewPostgresMapperFromDB(db)
	embedding := make([]float32, 4)

	examples, err := mapper.FindSimilar(context.Background(), embedding, 0)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "ventas por ciudad", examples[0].Question)
	assert.Contains(t, examples[0].SQL, "GROUP BY ciudad")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindSimilarNoMatches tests that an empty history yields no examples
func TestFindSimilarNoMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT question, sql_text").
		WillReturnRows(sqlmock.NewRows([]string{"question", "sql_text", "similarity"}))

	mapper := NewPostgresMapperFromDB(db)

	examples, err := mapper.FindSimilar(context.Background(), make([]float32, 4), 5)
	require.NoError(t, err)
	assert.Empty(t, examples)
}

// TestRecent tests listing the latest answered questions
func TestRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"question", "sql_text"}).
		AddRow("ventas de hoy", "SELECT * FROM ventas WHERE fecha = CURRENT_DATE LIMIT 100").
		AddRow("ventas por ciudad", "SELECT ciudad, SUM(cantidad) FROM ventas GROUP BY ciudad LIMIT 100")

	mock.ExpectQuery("SELECT question, sql_text").
		WithArgs(20).
		WillReturnRows(rows)

	mapper := NewPostgresMapperFromDB(db)

	recent, err := mapper.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "ventas de hoy", recent[0].Question)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveQuery tests recording an answered question
func TestSaveQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO consultas").
		WithArgs(sqlmock.AnyArg(), "¿Quién vendió más?", "SELECT vendedor FROM ventas", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mapper := NewPostgresMapperFromDB(db)

	err = mapper.SaveQuery(context.Background(), "¿Quién vendió más?", "SELECT vendedor FROM ventas", make([]float32, 4))
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
