package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestEnvProvider(t *testing.T) {
	ctx := context.Background()

	os.Setenv("TEST_SECRET", "test-value")
	defer os.Unsetenv("TEST_SECRET")

	provider := NewEnvProvider()

	t.Run("retrieves existing env var", func(t *testing.T) {
		value, err := provider.GetSecret(ctx, "TEST_SECRET")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "test-value" {
			t.Errorf("expected 'test-value', got '%s'", value)
		}
	})

	t.Run("returns empty for non-existent env var", func(t *testing.T) {
		value, err := provider.GetSecret(ctx, "NON_EXISTENT")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "" {
			t.Errorf("expected empty string, got '%s'", value)
		}
	})

	t.Run("is always available", func(t *testing.T) {
		if !provider.IsAvailable(ctx) {
			t.Error("env provider should always be available")
		}
	})

	t.Run("has correct name", func(t *testing.T) {
		if provider.Name() != "env" {
			t.Errorf("expected name 'env', got '%s'", provider.Name())
		}
	})
}

func TestFileProvider(t *testing.T) {
	ctx := context.Background()

	tmpDir := t.TempDir()

	secretFile := tmpDir + "/claude-api-key"
	err := os.WriteFile(secretFile, []byte("sk-ant-test-key\n"), 0600)
	if err != nil {
		t.Fatalf("failed to create test secret file: %v", err)
	}

	provider := NewFileProvider(tmpDir)

	t.Run("retrieves secret from file", func(t *testing.T) {
		value, err := provider.GetSecret(ctx, "CLAUDE_API_KEY")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "sk-ant-test-key" {
			t.Errorf("expected 'sk-ant-test-key', got '%s'", value)
		}
	})

	t.Run("returns empty for non-existent file", func(t *testing.T) {
		value, err := provider.GetSecret(ctx, "NON_EXISTENT_SECRET")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "" {
			t.Errorf("expected empty string, got '%s'", value)
		}
	})

	t.Run("is available when directory exists", func(t *testing.T) {
		if !provider.IsAvailable(ctx) {
			t.Error("file provider should be available when directory exists")
		}
	})

	t.Run("is not available when directory doesn't exist", func(t *testing.T) {
		provider := NewFileProvider("/non/existent/path")
		if provider.IsAvailable(ctx) {
			t.Error("file provider should not be available for non-existent directory")
		}
	})

	t.Run("is not available when path is empty", func(t *testing.T) {
		provider := NewFileProvider("")
		if provider.IsAvailable(ctx) {
			t.Error("file provider should not be available with empty path")
		}
	})
}

func TestChainProvider(t *testing.T) {
	ctx := context.Background()

	tmpDir := t.TempDir()
	if err := os.WriteFile(tmpDir+"/db-password", []byte("from-file"), 0600); err != nil {
		t.Fatalf("failed to create test secret file: %v", err)
	}

	os.Setenv("DB_PASSWORD", "from-env")
	os.Setenv("JWT_SECRET", "env-only-secret")
	defer os.Unsetenv("DB_PASSWORD")
	defer os.Unsetenv("JWT_SECRET")

	chain := NewChainProvider(NewFileProvider(tmpDir), NewEnvProvider())

	t.Run("earlier provider wins", func(t *testing.T) {
		value, err := chain.GetSecret(ctx, "DB_PASSWORD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "from-file" {
			t.Errorf("expected 'from-file', got '%s'", value)
		}
	})

	t.Run("falls back to later provider", func(t *testing.T) {
		value, err := chain.GetSecret(ctx, "JWT_SECRET")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "env-only-secret" {
			t.Errorf("expected 'env-only-secret', got '%s'", value)
		}
	})
}

func TestLoaderDefaults(t *testing.T) {
	ctx := context.Background()

	loader := NewLoader(NewEnvProvider())
	cfg, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("expected default host 'localhost', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Database != "ventas_ai" {
		t.Errorf("expected default database 'ventas_ai', got '%s'", cfg.Database.Database)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got '%s'", cfg.Redis.Addr)
	}
	if cfg.Query.RowCap != 100 {
		t.Errorf("expected default row cap 100, got %d", cfg.Query.RowCap)
	}
	if cfg.Query.DisplayRows != 10 {
		t.Errorf("expected default display rows 10, got %d", cfg.Query.DisplayRows)
	}
	if cfg.Query.CacheTTL != 5*time.Minute {
		t.Errorf("expected default cache TTL 5m, got %v", cfg.Query.CacheTTL)
	}
	if cfg.Export.CSVPath != "output/ventas.csv" {
		t.Errorf("expected default CSV path, got '%s'", cfg.Export.CSVPath)
	}
	if cfg.Export.ChartDir != "output/charts" {
		t.Errorf("expected default chart dir, got '%s'", cfg.Export.ChartDir)
	}
}

func TestLoaderOverrides(t *testing.T) {
	ctx := context.Background()

	os.Setenv("DB_NAME", "ventas_test")
	os.Setenv("QUERY_ROW_CAP", "50")
	os.Setenv("CACHE_TTL", "90s")
	os.Setenv("ALLOW_ANONYMOUS", "true")
	defer func() {
		os.Unsetenv("DB_NAME")
		os.Unsetenv("QUERY_ROW_CAP")
		os.Unsetenv("CACHE_TTL")
		os.Unsetenv("ALLOW_ANONYMOUS")
	}()

	loader := NewLoader(NewEnvProvider())
	cfg, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Database != "ventas_test" {
		t.Errorf("expected 'ventas_test', got '%s'", cfg.Database.Database)
	}
	if cfg.Query.RowCap != 50 {
		t.Errorf("expected row cap 50, got %d", cfg.Query.RowCap)
	}
	if cfg.Query.CacheTTL != 90*time.Second {
		t.Errorf("expected cache TTL 90s, got %v", cfg.Query.CacheTTL)
	}
	if !cfg.Auth.AllowAnonymous {
		t.Error("expected anonymous access to be enabled")
	}
}

func TestLoaderBadValuesFallBackToDefaults(t *testing.T) {
	ctx := context.Background()

	os.Setenv("QUERY_ROW_CAP", "not-a-number")
	os.Setenv("CACHE_TTL", "not-a-duration")
	defer func() {
		os.Unsetenv("QUERY_ROW_CAP")
		os.Unsetenv("CACHE_TTL")
	}()

	loader := NewLoader(NewEnvProvider())
	cfg, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Query.RowCap != 100 {
		t.Errorf("expected fallback row cap 100, got %d", cfg.Query.RowCap)
	}
	if cfg.Query.CacheTTL != 5*time.Minute {
		t.Errorf("expected fallback cache TTL 5m, got %v", cfg.Query.CacheTTL)
	}
}
