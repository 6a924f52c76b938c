package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/repository"
	"dns-manager-backend/pkg/auth"
	"dns-manager-backend/pkg/storage"
)

func newAuth(t *testing.T) AuthUsecase {
	t.Helper()
	store := storage.NewJSONStorage(t.TempDir())
	return NewAuthUsecase(repository.NewUserRepository(store), auth.NewTokenIssuer("secret", time.Hour), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	user, err := a.Register(ctx, RegisterInput{FullName: "Ada", Email: " Ada@Example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	_, err = a.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	res, err := a.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.Claims.ID)

	claims, err := a.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.FullName)
}

func TestLogin_BadCredentials(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()
	_, err := a.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = a.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = a.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestVerifyToken_Rejects(t *testing.T) {
	a := newAuth(t)

	_, err := a.VerifyToken("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = a.VerifyToken("garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListUsers_HidesPasswordHash(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()
	_, err := a.Register(ctx, RegisterInput{FullName: "Ada", Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)

	users, err := a.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	body, err := json.Marshal(users)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "hunter22")
	assert.NotContains(t, string(body), users[0].PasswordHash)
}
