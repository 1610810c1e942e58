package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pos-backend/internal/users"
	pkgAuth "github.com/angelmondragon/pos-backend/pkg/auth"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "pos-backend",
	ExpirationMinutes: 30,
}

type stubSessionManager struct {
	mu        sync.Mutex
	generated []string
	err       error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func seedUser(t *testing.T, client *db.Client, username, password string, role enums.UserRole) uuid.UUID {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	user, err := users.NewRepository(client.DB()).Create(context.Background(), users.CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return user.ID
}

func TestServiceLogin(t *testing.T) {
	client := dbtest.Open(t)
	userID := seedUser(t, client, "cashier1", "correct-horse", enums.UserRoleCashier)
	sessions := &stubSessionManager{}

	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(client.DB()),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " Cashier1 ", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleCashier, claims.Role)
	assert.Equal(t, "cashier1", claims.Username)

	require.Len(t, sessions.generated, 1)
	assert.Equal(t, claims.ID, sessions.generated[0])
	assert.Equal(t, "refresh-"+claims.ID, resp.RefreshToken)
	require.NotNil(t, resp.User.LastLoginAt)
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	client := dbtest.Open(t)
	seedUser(t, client, "cashier1", "correct-horse", enums.UserRoleCashier)

	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(client.DB()),
		SessionManager: &stubSessionManager{},
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Username: "cashier1", Password: "wrong-password"},
		{Username: "ghost", Password: "correct-horse"},
		{Username: "", Password: "correct-horse"},
	} {
		_, err := svc.Login(context.Background(), req)
		var typed *pkgerrors.Error
		require.True(t, errors.As(err, &typed), "expected typed error for %+v", req)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, invalidCredentialsMessage, typed.Message())
	}
}

func TestServiceMe(t *testing.T) {
	client := dbtest.Open(t)
	userID := seedUser(t, client, "boss", "correct-horse", enums.UserRoleAdmin)

	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(client.DB()),
		SessionManager: &stubSessionManager{},
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "boss", me.Username)
	assert.Equal(t, enums.UserRoleAdmin, me.Role)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
