package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	apperrors "github.com/ventasai/ventas-ai/internal/errors"
	"github.com/ventasai/ventas-ai/internal/store"
)

// ChartRenderer writes a bar chart as a standalone HTML file. The first
// column becomes the category axis and the first numeric column the
// value series.
type ChartRenderer struct {
	OutputDir string
	Title     string
}

// NewChartRenderer creates a chart renderer writing under dir.
func NewChartRenderer(dir string) *ChartRenderer {
	return &ChartRenderer{
		OutputDir: dir,
		Title:     "Resultados de ventas",
	}
}

// Render plots the result set and returns the path of the written file.
// Empty results and results without a numeric column are not plottable;
// no file is written in either case.
func (c *ChartRenderer) Render(ctx context.Context, rs *store.ResultSet) (Artifact, error) {
	if rs == nil || rs.Empty() {
		return Artifact{}, apperrors.NewNotPlottableError("result set has no rows")
	}

	valueCol, ok := rs.FirstNumericColumn()
	if !ok {
		return Artifact{}, apperrors.NewNotPlottableError("result set has no numeric column")
	}
	if len(rs.Columns) == 0 {
		return Artifact{}, apperrors.NewNotPlottableError("result set has no columns")
	}
	labelCol := rs.Columns[0]

	categories := make([]string, 0, len(rs.Rows))
	values := make([]opts.BarData, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		categories = append(categories, row[labelCol].String())
		values = append(values, opts.BarData{Value: row[valueCol].Number})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: labelCol}),
		charts.WithYAxisOpts(opts.YAxis{Name: valueCol}),
	)
	bar.SetXAxis(categories).AddSeries(valueCol, values)

	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create chart directory: %w", err)
	}

	// Unique name per chart so concurrent requests never clobber each other
	path := filepath.Join(c.OutputDir, uuid.New().String()+".html")
	f, err := os.Create(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		os.Remove(path)
		return Artifact{}, fmt.Errorf("failed to render chart: %w", err)
	}

	return ChartArtifact(path), nil
}
