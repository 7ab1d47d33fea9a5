package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventpass/eventpass-api/internal/domain"
)

func newAuthService(s *memStore) *AuthService {
	return NewAuthService(&fakeUserRepo{s: s})
}

func TestSignupForcesMemberRole(t *testing.T) {
	svc := newAuthService(newMemStore())

	created, err := svc.Signup(context.Background(), domain.User{
		Email:       "new@example.com",
		Password:    "secret-pw-1",
		DisplayName: "New User",
		Role:        domain.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleMember, created.Role)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret-pw-1")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newAuthService(seededStore())

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    testMember.Email,
		Password: "secret-pw-1",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestLogin(t *testing.T) {
	s := newMemStore()
	svc := newAuthService(s)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "login@example.com",
		Password: "secret-pw-1",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "login@example.com", "secret-pw-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(context.Background(), "login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret-pw-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
