// Package intent routes a natural language question to an output action.
package intent

import "strings"

// Decision is the output action selected for a question
type Decision string

const (
	DecisionTable Decision = "table"
	DecisionChart Decision = "chart"
	DecisionFile  Decision = "file"
)

// rule pairs a keyword set with the decision it selects
type rule struct {
	keywords []string
	decision Decision
}

// Router classifies questions by case-insensitive keyword search over an
// ordered rule table. The first matching rule wins, so precedence is data:
// chart before file before the table default.
type Router struct {
	rules []rule
}

// NewRouter creates a router with the default Spanish keyword sets
func NewRouter() *Router {
	return &Router{
		rules: []rule{
			{
				keywords: []string{"gráfico", "grafico", "gráficos", "grafica"},
				decision: DecisionChart,
			},
			{
				keywords: []string{"archivo", "csv", "excel"},
				decision: DecisionFile,
			},
		},
	}
}

// Route selects the output action for a question. Total function: any text,
// including the empty string, yields a decision.
func (r *Router) Route(question string) Decision {
	lowered := strings.ToLower(question)

	for _, rule := range r.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.decision
			}
		}
	}

	return DecisionTable
}
