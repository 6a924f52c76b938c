package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/repository"
	"dns-manager-backend/pkg/auth"
)

// authUsecase implements AuthUsecase
type authUsecase struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	lg     *zap.Logger
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(users repository.UserRepository, tokens *auth.TokenIssuer, lg *zap.Logger) AuthUsecase {
	return &authUsecase{
		users:  users,
		tokens: tokens,
		lg:     lg,
	}
}

// Register creates a user with a bcrypt password hash. Request shape is
// checked by the caller's binding.
func (u *authUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, domain.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	u.lg.Info("[Register] SUCCESS", zap.String("userID", user.ID))
	return user, nil
}

// Login checks credentials and issues a token
func (u *authUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrBadCredentials
	}

	token, err := u.tokens.Issue(user.ID, user.FullName, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		Claims: domain.TokenClaims{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
		},
	}, nil
}

// ListUsers returns all users
func (u *authUsecase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return u.users.List(ctx)
}

// VerifyToken checks a token and returns its claims
func (u *authUsecase) VerifyToken(token string) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.NewError(domain.KindUnauthorized, "access denied, no token provided", nil)
	}
	claims, err := u.tokens.Verify(token)
	if err != nil {
		return nil, domain.NewError(domain.KindUnauthorized, "invalid token", err)
	}
	return &domain.TokenClaims{
		ID:       claims.ID,
		FullName: claims.FullName,
		Email:    claims.Email,
	}, nil
}
