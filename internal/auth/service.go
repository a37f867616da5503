package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/homeguard-core/internal/validation"
)

// Service applies validation and credential handling on top of a
// UserRepository. Every input is checked before a User is built.
type Service struct {
	repo UserRepository
}

// NewService creates a Service over repo.
func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// Register validates the inputs, hashes the password and stores a new account.
func (s *Service) Register(ctx context.Context, email, name, password string, role Role) (*User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if !IsValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns the account for email.
func (s *Service) Get(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateName changes the display name.
func (s *Service) UpdateName(ctx context.Context, email, name string) (*User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(name)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, email, current, next string) error {
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := checkPassword(u, current); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.Email, hash)
}

// Delete removes the account for email. An actor cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *User, email string) error {
	if actor != nil && actor.Email == normaliseEmail(email) {
		return ErrSelfModification
	}
	return s.repo.Delete(ctx, email)
}
