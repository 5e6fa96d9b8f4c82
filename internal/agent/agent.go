// Package agent orchestrates the question pipeline: translate a natural
// language question to SQL, validate it, execute it against the sales
// database, and render the result the way the question asked for it.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ventasai/ventas-ai/internal/errors"
	"github.com/ventasai/ventas-ai/internal/intent"
	"github.com/ventasai/ventas-ai/internal/llm"
	"github.com/ventasai/ventas-ai/internal/observability"
	"github.com/ventasai/ventas-ai/internal/render"
	"github.com/ventasai/ventas-ai/internal/sanitize"
	"github.com/ventasai/ventas-ai/internal/semantic"
	"github.com/ventasai/ventas-ai/internal/store"
)

// AskRequest represents an incoming natural language question
type AskRequest struct {
	Question string `json:"question" binding:"required"`
	UserID   string `json:"user_id,omitempty"`
}

// AskResponse represents the processed question result
type AskResponse struct {
	Question       string           `json:"question"`
	SQL            string           `json:"sql"`
	Decision       intent.Decision  `json:"decision"`
	Artifact       render.Artifact  `json:"artifact"`
	Results        *store.ResultSet `json:"results,omitempty"`
	RowCount       int              `json:"row_count"`
	CacheHit       bool             `json:"cache_hit"`
	ProcessingTime time.Duration    `json:"processing_time,omitempty"`
}

// Config holds tunables for the agent
type Config struct {
	CacheTTL        time.Duration
	HistoryExamples int
	RowCap          int
	DisplayRows     int
}

// Agent is the main service struct
type Agent struct {
	llmClient     llm.Client
	validator     sanitize.Validator
	salesStore    store.Store
	mapper        semantic.Mapper
	router        *intent.Router
	cache         *redis.Client
	table         render.Renderer
	chart         render.Renderer
	file          render.Renderer
	logger        *observability.Logger
	healthChecker *observability.HealthChecker
	config        Config
}

// NewAgent creates a new agent instance
func NewAgent(llmClient llm.Client, salesStore store.Store, mapper semantic.Mapper, cache *redis.Client, chartDir, csvPath string, config Config) *Agent {
	if config.CacheTTL == 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.HistoryExamples == 0 {
		config.HistoryExamples = 3
	}

	csvRenderer := render.NewCSVRenderer()
	if csvPath != "" {
		csvRenderer.Path = csvPath
	}

	validator := sanitize.NewDenylist()
	if config.RowCap > 0 {
		validator.RowCap = config.RowCap
	}

	tableRenderer := render.NewTableRenderer()
	if config.DisplayRows > 0 {
		tableRenderer.RowLimit = config.DisplayRows
	}

	return &Agent{
		llmClient:  llmClient,
		validator:  validator,
		salesStore: salesStore,
		mapper:     mapper,
		router:     intent.NewRouter(),
		cache:      cache,
		table:      tableRenderer,
		chart:      render.NewChartRenderer(chartDir),
		file:       csvRenderer,
		logger:     observability.NewLogger("agent"),
		config:     config,
	}
}

// SetValidator replaces the default denylist validator
func (a *Agent) SetValidator(v sanitize.Validator) {
	a.validator = v
}

// SetHealthChecker sets the health checker for the agent
func (a *Agent) SetHealthChecker(healthChecker *observability.HealthChecker) {
	a.healthChecker = healthChecker
}

// HandleQuestion runs the full pipeline for one question. It never panics;
// unexpected failures surface as an UNKNOWN error instead.
func (a *Agent) HandleQuestion(ctx context.Context, req *AskRequest) (response *AskResponse, processingErr error) {
	start := time.Now()

	a.logger.Info(ctx, "Processing question", map[string]interface{}{
		"question": req.Question,
	})

	var errorCode string

	defer func() {
		if r := recover(); r != nil {
			errorCode = string(errors.ErrCodeUnknown)
			response = nil
			processingErr = errors.NewUnknownError(fmt.Errorf("panic: %v", r))
		}

		duration := time.Since(start)
		success := processingErr == nil
		cached := response != nil && response.CacheHit
		observability.RecordQuestionMetrics(duration, success, cached, errorCode)

		if processingErr != nil {
			a.logger.Error(ctx, "Question processing failed", processingErr, map[string]interface{}{
				"question":    req.Question,
				"duration_ms": duration.Milliseconds(),
				"error_code":  errorCode,
			})
		} else {
			a.logger.Info(ctx, "Question processed successfully", map[string]interface{}{
				"question":    req.Question,
				"duration_ms": duration.Milliseconds(),
				"cache_hit":   cached,
				"decision":    string(response.Decision),
			})
		}
	}()

	// Embedding failures are non-fatal. Without one we translate without
	// examples and skip saving the pair afterwards.
	var embedding []float32
	embedStart := time.Now()
	emb, embedErr := a.llmClient.Embed(ctx, req.Question)
	observability.RecordLLMMetrics("embedding", time.Since(embedStart), 0, embedErr)
	if embedErr != nil {
		a.logger.Warn(ctx, "Failed to generate embedding", map[string]interface{}{
			"error": embedErr.Error(),
		})
	} else {
		embedding = emb
	}

	safeSQL, cacheHit, err := a.translate(ctx, req.Question, embedding)
	if err != nil {
		errorCode = errorCodeOf(err)
		return nil, err
	}

	execStart := time.Now()
	rs, err := a.salesStore.Execute(ctx, safeSQL)
	observability.RecordDBMetrics("execute", time.Since(execStart), err)
	if err != nil {
		errorCode = string(errors.ErrCodeExecutionFailed)
		return nil, errors.NewExecutionFailedError(err)
	}

	decision := a.router.Route(req.Question)
	observability.RecordIntentDecision(string(decision))

	artifact, err := a.render(ctx, decision, rs)
	if err != nil {
		errorCode = errorCodeOf(err)
		return nil, err
	}

	// Record the answered pair for future few-shot retrieval. Failures here
	// cost us history, not the answer.
	if !cacheHit && len(embedding) > 0 {
		if err := a.mapper.SaveQuery(ctx, req.Question, safeSQL, embedding); err != nil {
			a.logger.Warn(ctx, "Failed to save question history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	response = &AskResponse{
		Question:       req.Question,
		SQL:            safeSQL,
		Decision:       decision,
		Artifact:       artifact,
		Results:        rs,
		RowCount:       len(rs.Rows),
		CacheHit:       cacheHit,
		ProcessingTime: time.Since(start),
	}

	return response, nil
}

// translate produces the sanitized SQL for a question, consulting the
// translation cache first. The boolean reports a cache hit.
func (a *Agent) translate(ctx context.Context, question string, embedding []float32) (string, bool, error) {
	if cached, err := a.getCachedSQL(ctx, question); err == nil {
		a.logger.Debug(ctx, "Translation cache hit", map[string]interface{}{
			"question": question,
		})
		observability.GetGlobalMetrics().Inc(observability.MetricQuestionCacheHits, nil)
		return cached, true, nil
	}
	observability.GetGlobalMetrics().Inc(observability.MetricQuestionCacheMisses, nil)

	// Similar past questions improve translation but are optional
	var examples []llm.Example
	if len(embedding) > 0 {
		found, err := a.mapper.FindSimilar(ctx, embedding, a.config.HistoryExamples)
		if err != nil {
			a.logger.Warn(ctx, "Failed to find similar questions", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			examples = found
		}
	}

	translateStart := time.Now()
	rawSQL, err := a.llmClient.Translate(ctx, question, examples)
	observability.RecordLLMMetrics("translate", time.Since(translateStart), 0, err)
	if err != nil {
		return "", false, errors.NewTranslationFailedError(err)
	}

	safeSQL, err := a.validator.Sanitize(rawSQL)
	if err != nil {
		observability.GetGlobalMetrics().Inc(observability.MetricUnsafeQueriesBlocked, nil)
		return "", false, errors.NewUnsafeQueryError(err)
	}

	if err := a.cacheSQL(ctx, question, safeSQL); err != nil {
		a.logger.Warn(ctx, "Failed to cache translation", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return safeSQL, false, nil
}

// render dispatches the result set to the renderer the decision selected
func (a *Agent) render(ctx context.Context, decision intent.Decision, rs *store.ResultSet) (render.Artifact, error) {
	var renderer render.Renderer
	switch decision {
	case intent.DecisionChart:
		renderer = a.chart
	case intent.DecisionFile:
		renderer = a.file
	default:
		renderer = a.table
	}

	artifact, err := renderer.Render(ctx, rs)
	if err != nil {
		if enhanced, ok := err.(*errors.EnhancedError); ok {
			return render.Artifact{}, enhanced
		}
		return render.Artifact{}, errors.Wrap(err, errors.ErrCodeRenderFailed, "Failed to render the result")
	}

	switch artifact.Kind {
	case render.KindChart:
		observability.GetGlobalMetrics().Inc(observability.MetricChartsRendered, nil)
	case render.KindFile:
		observability.GetGlobalMetrics().Inc(observability.MetricFilesExported, nil)
	}

	return artifact, nil
}

// cachedTranslation is the value stored in the translation cache
type cachedTranslation struct {
	SQL string `json:"sql"`
}

// getCachedSQL retrieves a cached translation. Only sanitized SQL is ever
// cached, so a hit skips both the model call and the safety gate.
func (a *Agent) getCachedSQL(ctx context.Context, question string) (string, error) {
	if a.cache == nil {
		return "", redis.Nil
	}

	key := fmt.Sprintf("translation:%s", question)
	cached, err := a.cache.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}

	var entry cachedTranslation
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		return "", err
	}

	return entry.SQL, nil
}

// cacheSQL stores a sanitized translation
func (a *Agent) cacheSQL(ctx context.Context, question, safeSQL string) error {
	if a.cache == nil {
		return nil
	}

	key := fmt.Sprintf("translation:%s", question)

	data, err := json.Marshal(cachedTranslation{SQL: safeSQL})
	if err != nil {
		return err
	}

	return a.cache.Set(ctx, key, data, a.config.CacheTTL).Err()
}

// errorCodeOf extracts the code label for metrics
func errorCodeOf(err error) string {
	if enhanced, ok := err.(*errors.EnhancedError); ok {
		return string(enhanced.Code)
	}
	return string(errors.ErrCodeUnknown)
}
