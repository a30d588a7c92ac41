package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/config"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestJWTService creates a service with a controllable clock so expiry
// behavior can be tested deterministically.
func newTestJWTService(t *testing.T, secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	t.Helper()

	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        int(lifetime / time.Minute),
		RefreshTokenLifetimeMinutes: int((24 * time.Hour) / time.Minute),
	})
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	impl.timeFunc = timeFunc

	return svc
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	// Setup
	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
		return fixedTime
	})

	t.Run("generates valid token with role claim", func(t *testing.T) {
		t.Parallel()
		token, err := svc.GenerateToken(context.Background(), userID, domain.RoleManager)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, domain.RoleManager, claims.Role)
		assert.Equal(t, userID.String(), claims.Subject)
		// Compare Unix timestamps to avoid timezone issues
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	// Setup
	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	wrongSecret := "wrong-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := svc.GenerateToken(context.Background(), userID, domain.RoleEmployee)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := genSvc.GenerateToken(context.Background(), userID, domain.RoleEmployee)

				// Validate well after expiry, beyond the clock skew allowance
				valSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime.Add(tokenLifetime + time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := genSvc.GenerateToken(context.Background(), userID, domain.RoleEmployee)

				valSvc := newTestJWTService(t, wrongSecret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				return svc, "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token rejected as access token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleEmployee)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
				assert.Equal(t, userID, claims.UserID)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	// Setup
	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid refresh token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleManager)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "access token rejected as refresh token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := svc.GenerateToken(context.Background(), userID, domain.RoleManager)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "expired refresh token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := genSvc.GenerateRefreshToken(context.Background(), userID, domain.RoleManager)

				valSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime.Add(25 * time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredRefreshToken,
		},
		{
			name: "tampered refresh token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
					return fixedTime
				})
				token, _ := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleManager)
				return svc, token + "tampered"
			},
			wantErr: ErrInvalidRefreshToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateRefreshToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, userID, claims.UserID)
				assert.Equal(t, domain.RoleManager, claims.Role)
			}
		})
	}
}

func TestClockSkewTolerance(t *testing.T) {
	t.Parallel()

	// Setup
	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	genSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
		return fixedTime
	})
	token, err := genSvc.GenerateToken(context.Background(), userID, domain.RoleEmployee)
	require.NoError(t, err)

	t.Run("accepts token expired within the skew allowance", func(t *testing.T) {
		t.Parallel()
		valSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
			return fixedTime.Add(tokenLifetime + time.Minute)
		})
		claims, err := valSvc.ValidateToken(context.Background(), token)
		assert.NoError(t, err)
		assert.NotNil(t, claims)
	})

	t.Run("rejects token expired beyond the skew allowance", func(t *testing.T) {
		t.Parallel()
		valSvc := newTestJWTService(t, secret, tokenLifetime, func() time.Time {
			return fixedTime.Add(tokenLifetime + 3*time.Minute)
		})
		_, err := valSvc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "too-short",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}
