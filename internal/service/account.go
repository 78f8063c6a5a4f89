package service

import (
	"context"
	"errors"
	"strings"

	"chartsight/internal/auth"
	"chartsight/internal/models"
	"chartsight/internal/repository"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AccountService struct {
	Repo repository.Repository
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Register creates a new account. Duplicate username or email each map to
// their own sentinel so the handler can answer 400 with a precise message.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	taken, err := s.Repo.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	taken, err = s.Repo.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves the identity (username or email) and verifies the
// password. Unknown identity and bad password are indistinguishable.
func (s *AccountService) Authenticate(ctx context.Context, identity, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByUsernameOrEmail(ctx, identity)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
