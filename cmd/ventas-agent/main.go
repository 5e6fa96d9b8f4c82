package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/ventasai/ventas-ai/internal/agent"
	"github.com/ventasai/ventas-ai/internal/auth"
	"github.com/ventasai/ventas-ai/internal/config"
	"github.com/ventasai/ventas-ai/internal/llm"
	"github.com/ventasai/ventas-ai/internal/observability"
	"github.com/ventasai/ventas-ai/internal/semantic"
	"github.com/ventasai/ventas-ai/internal/session"
	"github.com/ventasai/ventas-ai/internal/store"
)

func main() {
	ctx := context.Background()

	cfg := config.NewDefaultLoader().MustLoad(ctx)
	if err := cfg.ValidateWithContext(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	// Redis backs the translation cache and user sessions
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	claudeClient, err := llm.NewClaudeClient(cfg.Claude.APIKey, cfg.Claude.Model)
	if err != nil {
		log.Fatal("Failed to initialize LLM client: ", err)
	}
	llmClient := llm.NewCircuitBreakerClient(claudeClient, "claude", llm.DefaultCircuitBreakerConfig)

	salesStore, err := store.NewPostgresStore(store.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to initialize sales store: ", err)
	}
	defer salesStore.Close()

	semanticMapper, err := semantic.NewPostgresMapper(semantic.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to initialize semantic mapper: ", err)
	}
	defer semanticMapper.Close()

	sessionManager := session.NewManager(rdb, cfg.Auth.SessionExpiry)
	authManager := auth.NewAuthManager(auth.AuthConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTExpiry:      cfg.Auth.JWTExpiry,
		SessionExpiry:  cfg.Auth.SessionExpiry,
		RateLimit:      cfg.Auth.RateLimit,
		AllowAnonymous: cfg.Auth.AllowAnonymous,
	}, sessionManager)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authManager.CleanupExpired()
		}
	}()

	logger := observability.NewLogger("main")
	healthChecker := observability.NewHealthChecker()

	healthChecker.Register("database", observability.DatabaseHealthCheck(func(ctx context.Context) error {
		return salesStore.Ping(ctx)
	}))

	healthChecker.Register("redis", observability.RedisHealthCheck(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))

	healthChecker.Register("llm", observability.LLMHealthCheck(func(ctx context.Context) error {
		if llmClient.State() == gobreaker.StateOpen {
			return fmt.Errorf("claude circuit breaker is open")
		}
		return nil
	}))

	healthChecker.Register("memory", observability.MemoryHealthCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	salesAgent := agent.NewAgent(llmClient, salesStore, semanticMapper, rdb,
		cfg.Export.ChartDir, cfg.Export.CSVPath, agent.Config{
			CacheTTL:        cfg.Query.CacheTTL,
			HistoryExamples: cfg.Query.HistoryExamples,
			RowCap:          cfg.Query.RowCap,
			DisplayRows:     cfg.Query.DisplayRows,
		})
	salesAgent.SetHealthChecker(healthChecker)

	router := salesAgent.SetupRoutes(authManager)

	authHandlers := auth.NewAuthHandlers(authManager)
	authHandlers.SetupRoutes(router.Group("/api/v1"))

	logger.Info(ctx, "Sales agent starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"version": "1.0.0",
	})
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server: ", err)
	}
}
