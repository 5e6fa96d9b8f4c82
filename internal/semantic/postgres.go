package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/ventasai/ventas-ai/internal/llm"
)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// PostgresMapper implements the Mapper interface using PostgreSQL with
// the pgvector extension for similarity search.
type PostgresMapper struct {
	db *sql.DB
}

// NewPostgresMapper creates a new PostgreSQL-based semantic mapper
func NewPostgresMapper(config PostgresConfig) (*PostgresMapper, error) {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresMapper{db: db}, nil
}

// NewPostgresMapperFromDB wraps an existing connection, mainly for tests.
func NewPostgresMapperFromDB(db *sql.DB) *PostgresMapper {
	return &PostgresMapper{db: db}
}

// Ping tests the database connection
func (pm *PostgresMapper) Ping(ctx context.Context) error {
	return pm.db.PingContext(ctx)
}

// Close closes the database connection
func (pm *PostgresMapper) Close() error {
	return pm.db.Close()
}

// FindSimilar finds past questions similar to the given embedding using
// cosine similarity and returns them as translation examples
func (pm *PostgresMapper) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]llm.Example, error) {
	if limit <= 0 {
		limit = 3
	}

	vector := pgvector.NewVector(embedding)

	query := `
		SELECT question, sql_text,
		       1 - (embedding <=> $1) as similarity
		FROM consultas
		WHERE 1 - (embedding <=> $1) > 0.8
		ORDER BY similarity DESC
		LIMIT $2
	`

	rows, err := pm.db.QueryContext(ctx, query, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar questions: %w", err)
	}
	defer rows.Close()

	var examples []llm.Example
	for rows.Next() {
		var ex llm.Example
		var similarity float64
		if err := rows.Scan(&ex.Question, &ex.SQL, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		examples = append(examples, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}

	return examples, nil
}

// Recent returns the most recently answered questions, newest first
func (pm *PostgresMapper) Recent(ctx context.Context, limit int) ([]llm.Example, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT question, sql_text
		FROM consultas
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := pm.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent questions: %w", err)
	}
	defer rows.Close()

	var examples []llm.Example
	for rows.Next() {
		var ex llm.Example
		if err := rows.Scan(&ex.Question, &ex.SQL); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		examples = append(examples, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}

	return examples, nil
}

// SaveQuery stores an answered question with its SQL and embedding.
// Re-asking the same question updates the stored SQL instead of
// accumulating duplicates.
func (pm *PostgresMapper) SaveQuery(ctx context.Context, question, sqlText string, embedding []float32) error {
	vector := pgvector.NewVector(embedding)

	insertQuery := `
		INSERT INTO consultas (id, question, sql_text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (question) DO UPDATE SET
			sql_text = $3,
			embedding = $4,
			updated_at = $5
	`

	id := uuid.New().String()
	now := time.Now()

	_, err := pm.db.ExecContext(ctx, insertQuery, id, question, sqlText, vector, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("failed to store question (%s): %w", pqErr.Code, err)
		}
		return fmt.Errorf("failed to store question: %w", err)
	}

	return nil
}
