package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/ventasai/ventas-ai/internal/store"
)

// DisplayRowLimit caps how many rows the inline table shows. The full
// result is still available through the file renderer.
const DisplayRowLimit = 10

// TableRenderer formats a result set as an aligned plain-text table.
type TableRenderer struct {
	RowLimit int
}

// NewTableRenderer creates a table renderer with the default row limit.
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{RowLimit: DisplayRowLimit}
}

// Render produces a text table, or an empty artifact when the result
// has no rows.
func (t *TableRenderer) Render(ctx context.Context, rs *store.ResultSet) (Artifact, error) {
	if rs == nil || rs.Empty() {
		return EmptyArtifact(), nil
	}

	shown := rs.Rows
	truncated := 0
	if t.RowLimit > 0 && len(shown) > t.RowLimit {
		truncated = len(shown) - t.RowLimit
		shown = shown[:t.RowLimit]
	}

	// Column widths from header and visible cells
	widths := make([]int, len(rs.Columns))
	for i, col := range rs.Columns {
		widths[i] = len(col)
	}
	cells := make([][]string, len(shown))
	for r, row := range shown {
		cells[r] = make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			s := row[col].String()
			cells[r][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		sb.WriteString("\n")
	}

	writeRow(rs.Columns)
	separators := make([]string, len(rs.Columns))
	for i := range separators {
		separators[i] = strings.Repeat("-", widths[i])
	}
	writeRow(separators)
	for _, row := range cells {
		writeRow(row)
	}

	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("... %d more rows\n", truncated))
	}

	return TableArtifact(strings.TrimRight(sb.String(), " \n") + "\n"), nil
}
