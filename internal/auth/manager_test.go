// internal/auth/manager_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewAuthManager tests creation of auth manager
func TestNewAuthManager(t *testing.T) {
	tests := []struct {
		name           string
		config         AuthConfig
		expectedExpiry time.Duration
	}{
		{
			name: "default configuration",
			config: AuthConfig{
				JWTSecret: "test-secret",
			},
			expectedExpiry: 24 * time.Hour,
		},
		{
			name: "custom configuration",
			config: AuthConfig{
				JWTSecret:     "custom-secret",
				JWTExpiry:     2 * time.Hour,
				SessionExpiry: 48 * time.Hour,
				RateLimit:     200,
			},
			expectedExpiry: 2 * time.Hour,
		},
		{
			name:           "empty configuration uses defaults",
			config:         AuthConfig{},
			expectedExpiry: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am := NewTestAuthManager(tt.config)
			require.NotNil(t, am)
			assert.NotEmpty(t, am.config.JWTSecret)
			assert.Equal(t, tt.expectedExpiry, am.config.JWTExpiry)

			// Verify default admin user was created
			adminUser, err := am.GetUserByUsername("admin")
			require.NoError(t, err)
			assert.Equal(t, "admin", adminUser.Username)
			assert.Contains(t, adminUser.Roles, "admin")
			assert.True(t, adminUser.Active)
		})
	}
}

// TestCreateUser tests user creation
func TestCreateUser(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		email       string
		roles       []string
		wantErr     bool
		errContains string
	}{
		{
			name:     "create regular user",
			username: "vendedor1",
			email:    "vendedor1@example.com",
			roles:    []string{"user"},
			wantErr:  false,
		},
		{
			name:     "create user with multiple roles",
			username: "analista",
			email:    "analista@example.com",
			roles:    []string{"user", "analyst"},
			wantErr:  false,
		},
		{
			name:        "duplicate username fails",
			username:    "admin", // Already exists
			email:       "admin2@example.com",
			roles:       []string{"user"},
			wantErr:     true,
			errContains: "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

			user, err := am.CreateUser(tt.username, tt.email, tt.roles)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, user.ID)
				assert.Equal(t, tt.username, user.Username)
				assert.True(t, user.Active)

				retrievedUser, err := am.GetUser(user.ID)
				require.NoError(t, err)
				assert.Equal(t, user.ID, retrievedUser.ID)
			}
		})
	}
}

// TestPasswordValidation tests bcrypt password hashing and verification
func TestPasswordValidation(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("vendedor", "v@example.com", "contraseña-segura", []string{"user"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "contraseña-segura", user.PasswordHash)

	assert.True(t, am.ValidatePassword(user, "contraseña-segura"))
	assert.False(t, am.ValidatePassword(user, "wrong-password"))
	assert.False(t, am.ValidatePassword(user, ""))
}

// TestJWTTokenLifecycle tests JWT creation and validation
func TestJWTTokenLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUser("vendedor", "v@example.com", []string{"user"})
	require.NoError(t, err)

	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := am.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Roles, claims.Roles)

	t.Run("rejects tampered token", func(t *testing.T) {
		_, err := am.ValidateJWTToken(token + "x")
		assert.Error(t, err)
	})

	t.Run("rejects token for inactive user", func(t *testing.T) {
		user.Active = false
		defer func() { user.Active = true }()

		_, err := am.ValidateJWTToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		other := NewTestAuthManager(AuthConfig{JWTSecret: "different-secret"})
		_, err := other.ValidateJWTToken(token)
		assert.Error(t, err)
	})
}

// TestAPIKeyLifecycle tests API key creation, validation, and revocation
func TestAPIKeyLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUser("vendedor", "v@example.com", []string{"user"})
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(user.ID, "reporting", []string{"read"}, 50, 30*24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, apiKey.Key)
	assert.NotEqual(t, apiKey.Key, apiKey.HashedKey)

	validatedUser, validatedKey, err := am.ValidateAPIKey(apiKey.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validatedUser.ID)
	assert.Equal(t, apiKey.ID, validatedKey.ID)
	assert.False(t, validatedKey.LastUsedAt.IsZero())

	t.Run("rejects unknown key", func(t *testing.T) {
		_, _, err := am.ValidateAPIKey("vai_nonexistent")
		assert.Error(t, err)
	})

	t.Run("revoked key fails validation", func(t *testing.T) {
		require.NoError(t, am.RevokeAPIKey(apiKey.ID))
		_, _, err := am.ValidateAPIKey(apiKey.Key)
		assert.Error(t, err)
	})

	t.Run("listing hides plaintext keys", func(t *testing.T) {
		keys, err := am.ListAPIKeys(user.ID)
		require.NoError(t, err)
		require.NotEmpty(t, keys)
		for _, k := range keys {
			assert.Empty(t, k.Key)
		}
	})

	t.Run("expired key is rejected", func(t *testing.T) {
		expired, err := am.CreateAPIKey(user.ID, "short-lived", nil, 50, -time.Hour)
		require.NoError(t, err)
		_, _, err = am.ValidateAPIKey(expired.Key)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}

// TestSessionLifecycle tests Redis-backed session creation and validation
func TestSessionLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUser("vendedor", "v@example.com", []string{"user"})
	require.NoError(t, err)

	sessionID, err := am.CreateSession(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	sessionUser, err := am.ValidateSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sessionUser.ID)

	t.Run("revoked session fails validation", func(t *testing.T) {
		require.NoError(t, am.RevokeSession(sessionID))
		_, err := am.ValidateSession(sessionID)
		assert.Error(t, err)
	})

	t.Run("session for unknown user fails", func(t *testing.T) {
		_, err := am.CreateSession("no-such-user")
		assert.Error(t, err)
	})
}

// TestCleanupExpired tests expired API key cleanup
func TestCleanupExpired(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUser("vendedor", "v@example.com", []string{"user"})
	require.NoError(t, err)

	expired, err := am.CreateAPIKey(user.ID, "old", nil, 50, -time.Hour)
	require.NoError(t, err)
	valid, err := am.CreateAPIKey(user.ID, "current", nil, 50, time.Hour)
	require.NoError(t, err)

	am.CleanupExpired()

	keys, err := am.ListAPIKeys(user.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, valid.ID, keys[0].ID)
	assert.NotEqual(t, expired.ID, keys[0].ID)
}
