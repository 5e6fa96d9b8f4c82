// Package render turns query results into user-facing artifacts: an
// inline table, an HTML chart on disk, or a CSV export.
package render

import (
	"context"

	"github.com/ventasai/ventas-ai/internal/store"
)

// ArtifactKind discriminates the Artifact union.
type ArtifactKind string

const (
	KindTable ArtifactKind = "table"
	KindChart ArtifactKind = "chart"
	KindFile  ArtifactKind = "file"
	KindEmpty ArtifactKind = "empty"
)

// Artifact is the rendered outcome of a query. Exactly one of Text or
// Path is meaningful depending on Kind: Text for tables, Path for
// charts and files, neither for empty results.
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Text string       `json:"text,omitempty"`
	Path string       `json:"path,omitempty"`
}

// TableArtifact wraps rendered table text.
func TableArtifact(text string) Artifact {
	return Artifact{Kind: KindTable, Text: text}
}

// ChartArtifact wraps the path of a written chart file.
func ChartArtifact(path string) Artifact {
	return Artifact{Kind: KindChart, Path: path}
}

// FileArtifact wraps the path of a written export file.
func FileArtifact(path string) Artifact {
	return Artifact{Kind: KindFile, Path: path}
}

// EmptyArtifact marks a result with no rows.
func EmptyArtifact() Artifact {
	return Artifact{Kind: KindEmpty}
}

// Renderer produces one kind of artifact from a result set.
type Renderer interface {
	Render(ctx context.Context, rs *store.ResultSet) (Artifact, error)
}
