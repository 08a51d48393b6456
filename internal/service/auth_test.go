package service

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atoumapp/atoum-server/internal/auth"
	domainerrors "github.com/atoumapp/atoum-server/internal/errors"
	"github.com/atoumapp/atoum-server/internal/store/sqlite"
	"github.com/atoumapp/atoum-server/internal/validation"
)

// setupAuthTest creates an auth service over a temporary store.
func setupAuthTest(t *testing.T) *AuthService {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, testLogger())
	return NewAuthService(s, tokenService, sessionService, validation.New(), testLogger())
}

func setupRootUser(t *testing.T, svc *AuthService) *AuthResponse {
	t.Helper()

	resp, err := svc.Setup(context.Background(), SetupRequest{
		Email:       "simone@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Simone",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Setup(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	required, err := svc.IsSetupRequired(ctx)
	require.NoError(t, err)
	assert.True(t, required)

	resp := setupRootUser(t, svc)

	assert.True(t, resp.User.IsRoot)
	assert.True(t, resp.User.IsAdmin())
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)

	required, err = svc.IsSetupRequired(ctx)
	require.NoError(t, err)
	assert.False(t, required)
}

func TestAuthService_Setup_OnlyOnce(t *testing.T) {
	svc := setupAuthTest(t)
	setupRootUser(t, svc)

	_, err := svc.Setup(context.Background(), SetupRequest{
		Email:       "second@example.com",
		Password:    "another-password",
		DisplayName: "Second",
	})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestAuthService_Setup_InvalidInput(t *testing.T) {
	svc := setupAuthTest(t)

	_, err := svc.Setup(context.Background(), SetupRequest{
		Email:       "not-an-email",
		Password:    "short",
		DisplayName: "",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthTest(t)
	setupRootUser(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{
		Email:      "simone@example.com",
		Password:   "correct-horse-battery",
		ClientName: "Atoum Web",
	})
	require.NoError(t, err)

	assert.Equal(t, "simone@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupAuthTest(t)
	setupRootUser(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "simone@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := setupAuthTest(t)
	setupRootUser(t, svc)

	// Unknown email reads the same as a wrong password.
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	svc := setupAuthTest(t)
	first := setupRootUser(t, svc)
	ctx := context.Background()

	second, err := svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token is burned.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_Logout(t *testing.T) {
	svc := setupAuthTest(t)
	resp := setupRootUser(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, resp.SessionID))

	_, err := svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	svc := setupAuthTest(t)
	resp := setupRootUser(t, svc)
	ctx := context.Background()

	user, claims, err := svc.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	_, _, err = svc.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
