package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"task-tracker-backend/internal/avatars"
	"task-tracker-backend/internal/logger"
)

const MaxUsernameLen = 50

// AvatarStorage persists avatar bytes and returns the public URL.
type AvatarStorage interface {
	Save(ctx context.Context, userID int, contentType string, r io.Reader) (string, error)
}

type Service struct {
	users   *Store
	tokens  *Issuer
	avatars AvatarStorage
}

func NewService(users *Store, tokens *Issuer, avatars AvatarStorage) *Service {
	return &Service{users: users, tokens: tokens, avatars: avatars}
}

func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidInput
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return User{}, fmt.Errorf("%w: username longer than %d characters", ErrInvalidInput, MaxUsernameLen)
	}

	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return User{}, ErrDuplicateUser
	} else if !errors.Is(err, errUserNotFound) {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, username, hash)
	if err != nil {
		return User{}, err
	}
	logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies the password and returns a fresh bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, errUserNotFound) {
		// same bcrypt cost as a wrong password
		CheckPassword(dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !CheckPassword(u.HashedPassword, password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthorized
	}
	username, err := s.tokens.Parse(token)
	if err != nil {
		return User{}, ErrUnauthorized
	}

	u, err := s.users.ByUsername(ctx, username)
	if errors.Is(err, errUserNotFound) {
		return User{}, ErrUnauthorized
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// SetAvatar stores the upload and points the user's profile at it.
func (s *Service) SetAvatar(ctx context.Context, u User, contentType string, r io.Reader) (string, error) {
	if !avatars.Supported(contentType) {
		return "", ErrUnsupportedMediaType
	}

	url, err := s.avatars.Save(ctx, u.ID, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.users.SetAvatarURL(ctx, u.ID, url); err != nil {
		return "", err
	}
	return url, nil
}
