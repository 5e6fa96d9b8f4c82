// Package semantic stores past question/SQL pairs and retrieves the
// most similar ones as few-shot examples for translation.
package semantic

import (
	"context"

	"github.com/ventasai/ventas-ai/internal/llm"
)

// Mapper is the query history store.
type Mapper interface {
	// FindSimilar returns up to limit past examples ordered by embedding
	// similarity to the given vector.
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]llm.Example, error)

	// SaveQuery records a successfully answered question with its SQL
	// and embedding for future retrieval.
	SaveQuery(ctx context.Context, question, sql string, embedding []float32) error

	// Recent returns the most recently answered questions, newest first.
	Recent(ctx context.Context, limit int) ([]llm.Example, error)

	Ping(ctx context.Context) error
	Close() error
}
