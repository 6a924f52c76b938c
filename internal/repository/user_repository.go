package repository

import (
	"context"
	"errors"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/pkg/storage"
)

type userRepository struct {
	store storage.UserStorage
}

// NewUserRepository creates a new user repository
func NewUserRepository(store storage.UserStorage) UserRepository {
	return &userRepository{
		store: store,
	}
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	doc, err := r.store.InsertUser(ctx, storage.UserDocument{
		FullName: user.FullName,
		Email:    user.Email,
		Password: user.PasswordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, domain.StoreError("insert user", err)
	}

	result := mapToDomainUser(*doc)
	return &result, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.StoreError("find user", err)
	}

	result := mapToDomainUser(*doc)
	return &result, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	docs, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, domain.StoreError("list users", err)
	}

	result := make([]domain.User, len(docs))
	for i, d := range docs {
		result[i] = mapToDomainUser(d)
	}
	return result, nil
}

func mapToDomainUser(d storage.UserDocument) domain.User {
	return domain.User{
		ID:           d.ID,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.Password,
	}
}
