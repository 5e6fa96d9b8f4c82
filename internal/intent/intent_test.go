// internal/intent/intent_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRouter tests creation of the router
func TestNewRouter(t *testing.T) {
	r := NewRouter()

	require.NotNil(t, r)
	require.Len(t, r.rules, 2)
	assert.Equal(t, DecisionChart, r.rules[0].decision)
	assert.Equal(t, DecisionFile, r.rules[1].decision)
}

// TestRoute tests question routing
func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Decision
	}{
		{
			name:     "plain question defaults to table",
			question: "¿Cuántos productos se vendieron?",
			want:     DecisionTable,
		},
		{
			name:     "chart keyword with accent",
			question: "Genera un gráfico de ventas por mes",
			want:     DecisionChart,
		},
		{
			name:     "chart keyword without accent",
			question: "muestrame una grafica de cantidades",
			want:     DecisionChart,
		},
		{
			name:     "file keyword csv",
			question: "Guarda las ventas en un archivo csv",
			want:     DecisionFile,
		},
		{
			name:     "file keyword excel",
			question: "Exporta los resultados a excel",
			want:     DecisionFile,
		},
		{
			name:     "chart wins the tie-break over file",
			question: "Muestra el gráfico y guárdalo en excel",
			want:     DecisionChart,
		},
		{
			name:     "uppercase keywords match",
			question: "GENERA UN GRAFICO DE VENTAS",
			want:     DecisionChart,
		},
		{
			name:     "empty question defaults to table",
			question: "",
			want:     DecisionTable,
		},
		{
			name:     "keyword inside a longer word still matches",
			question: "archívalo en un archivo",
			want:     DecisionFile,
		},
	}

	r := NewRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Route(tt.question))
		})
	}
}

// TestRouteIsDeterministic tests that repeated routing yields the same decision
func TestRouteIsDeterministic(t *testing.T) {
	r := NewRouter()
	question := "Guarda el gráfico de ventas en un csv"

	first := r.Route(question)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Route(question))
	}
	assert.Equal(t, DecisionChart, first)
}
