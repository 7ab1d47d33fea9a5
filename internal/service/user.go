package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	ErrInvalidRole  = errors.New("invalid role")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.UserRole) (domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ListUsers returns all users. Admin only.
func (s *UserService) ListUsers(ctx context.Context, caller domain.User) ([]domain.User, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return users, nil
}

// UpdateRole changes a user's role. Admin only. The role is applied
// unconditionally; an admin may demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, caller domain.User, userID string, role domain.UserRole) (domain.User, error) {
	if caller.Role != domain.RoleAdmin {
		return domain.User{}, ErrForbidden
	}
	if !role.IsValid() {
		return domain.User{}, ErrInvalidRole
	}

	updated, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateRole -> %w", err)
	}

	return updated, nil
}
