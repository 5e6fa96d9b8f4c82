// internal/auth/testing_helper.go
package auth

import (
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/ventasai/ventas-ai/internal/session"
)

// NewTestAuthManager creates an auth manager for testing with an in-memory mock Redis
func NewTestAuthManager(config AuthConfig) *AuthManager {
	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("Failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	if config.SessionExpiry == 0 {
		config.SessionExpiry = 7 * 24 * time.Hour
	}

	sessionManager := session.NewManager(rdb, config.SessionExpiry)

	return NewAuthManager(config, sessionManager)
}
