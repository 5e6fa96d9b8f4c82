package render

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ventasai/ventas-ai/internal/store"
)

// DefaultExportPath is where the CSV export lands. Every export writes
// the same file; callers wanting history should copy it elsewhere.
const DefaultExportPath = "output/ventas.csv"

// CSVRenderer writes the full result set as a CSV file with a header
// row. Unlike the table renderer it never truncates.
type CSVRenderer struct {
	Path string
}

// NewCSVRenderer creates a CSV renderer writing to the default path.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{Path: DefaultExportPath}
}

// Render writes the CSV and returns the path. The write goes through a
// temp file and rename so a crash mid-write never leaves a half-written
// export behind.
func (c *CSVRenderer) Render(ctx context.Context, rs *store.ResultSet) (Artifact, error) {
	if rs == nil || rs.Empty() {
		return EmptyArtifact(), nil
	}

	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "ventas-*.csv.tmp")
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(rs.Columns); err != nil {
		tmp.Close()
		return Artifact{}, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, col := range rs.Columns {
			record[i] = row[col].String()
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return Artifact{}, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return Artifact{}, fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.Path); err != nil {
		return Artifact{}, fmt.Errorf("failed to move export into place: %w", err)
	}

	return FileArtifact(c.Path), nil
}
