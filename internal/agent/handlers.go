package agent

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ventasai/ventas-ai/internal/errors"
	"github.com/ventasai/ventas-ai/internal/observability"
)

// AuthMiddleware is an interface for authentication middleware
type AuthMiddleware interface {
	Middleware() gin.HandlerFunc
}

// SetupRoutes configures HTTP routes with optional authentication
func (a *Agent) SetupRoutes(authMiddleware AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.Use(observability.RecoveryMiddleware(a.logger))
	r.Use(observability.RequestLoggingMiddleware(a.logger))
	r.Use(observability.CORSWithLogging(a.logger))
	r.Use(observability.MetricsEndpointMiddleware(observability.GetGlobalMetrics()))

	if a.healthChecker != nil {
		r.Use(observability.HealthCheckMiddleware(a.healthChecker))
	} else {
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"service": "ventas-agent",
			})
		})
	}

	api := r.Group("/api/v1")
	if authMiddleware != nil {
		api.Use(authMiddleware.Middleware())
	}
	{
		api.POST("/ask", a.handleAsk)
		api.GET("/history", a.handleGetHistory)
		api.GET("/suggestions", a.handleGetSuggestions)
	}

	return r
}

// handleAsk is the main question endpoint
func (a *Agent) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		enhancedErr := errors.NewInvalidInputError("request body", err.Error())
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	response, err := a.HandleQuestion(c.Request.Context(), &req)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, response)
}

// handleGetHistory returns recently answered questions
func (a *Agent) handleGetHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			enhancedErr := errors.NewInvalidInputError("limit", "must be a positive integer")
			c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
			return
		}
		limit = parsed
	}

	questions, err := a.mapper.Recent(c.Request.Context(), limit)
	if err != nil {
		enhancedErr := errors.NewDatabaseQueryError(err, "fetching question history")
		c.JSON(http.StatusInternalServerError, formatErrorResponse(enhancedErr))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

// handleGetSuggestions returns example questions the agent answers well
func (a *Agent) handleGetSuggestions(c *gin.Context) {
	topic := c.Query("q")
	if topic == "" {
		topic = "ventas"
	}

	suggestions := []string{
		"Total de " + topic + " por producto",
		"Gráfico de " + topic + " por ciudad",
		"Exportar " + topic + " del último mes a csv",
		"¿Quién es el mejor vendedor por " + topic + "?",
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// formatErrorResponse formats an error into a user-friendly response
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		response := gin.H{
			"error": gin.H{
				"code":    enhancedErr.Code,
				"message": enhancedErr.Message,
			},
		}

		if enhancedErr.Details != "" {
			response["error"].(gin.H)["details"] = enhancedErr.Details
		}

		if enhancedErr.Suggestion != "" {
			response["error"].(gin.H)["suggestion"] = enhancedErr.Suggestion
		}

		if len(enhancedErr.Metadata) > 0 {
			response["error"].(gin.H)["metadata"] = enhancedErr.Metadata
		}

		return response
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

// getErrorStatusCode returns the appropriate HTTP status code for an error
func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired:
			return http.StatusBadRequest
		case errors.ErrCodeInvalidCredentials, errors.ErrCodeNotAuthenticated:
			return http.StatusUnauthorized
		case errors.ErrCodeInsufficientPerms:
			return http.StatusForbidden
		case errors.ErrCodeUnsafeQuery, errors.ErrCodeNotPlottable:
			return http.StatusBadRequest
		case errors.ErrCodeTranslationFailed, errors.ErrCodeExecutionFailed:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
