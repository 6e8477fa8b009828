package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/authz"
	"taskhub/internal/domain"
)

var anonymous = domain.Principal{}

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.Users.Register(env.Ctx, anonymous, "erin@x.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleRegular, user.Role)
	assert.Empty(t, user.PasswordHash)

	got, err := env.Users.Authenticate(env.Ctx, "erin@x.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = env.Users.Authenticate(env.Ctx, "erin@x.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.Users.Authenticate(env.Ctx, "nobody@x.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Users.Register(env.Ctx, anonymous, "bob@x.com", "long-enough", domain.RoleRegular)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var verr *domain.ValidationError
	_, err = env.Users.Register(env.Ctx, anonymous, "not-an-email", "long-enough", domain.RoleRegular)
	assert.True(t, errors.As(err, &verr))
	_, err = env.Users.Register(env.Ctx, anonymous, "erin@x.com", "short", domain.RoleRegular)
	assert.True(t, errors.As(err, &verr))

	_, err = env.Users.Register(env.Ctx, anonymous, "erin@x.com", "long-enough", domain.RoleAdmin)
	isForbidden(t, err, authz.ReasonForbidden)
	_, err = env.Users.Register(env.Ctx, env.Bob, "erin@x.com", "long-enough", domain.RoleAdmin)
	isForbidden(t, err, authz.ReasonForbidden)

	created, err := env.Users.Register(env.Ctx, env.Admin, "erin@x.com", "long-enough", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)
}

func TestUserAdministration_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Users.ListUsers(env.Ctx, env.Bob)
	isForbidden(t, err, authz.ReasonForbidden)
	_, err = env.Users.GetUser(env.Ctx, env.Bob, env.Carol.ID)
	isForbidden(t, err, authz.ReasonForbidden)
	_, err = env.Users.UpdateUser(env.Ctx, env.Bob, env.Bob.ID, domain.UserPatch{Role: ptr(domain.RoleAdmin)})
	isForbidden(t, err, authz.ReasonForbidden)
	isForbidden(t, env.Users.DeleteUser(env.Ctx, env.Bob, env.Carol.ID), authz.ReasonForbidden)

	users, err := env.Users.ListUsers(env.Ctx, env.Admin)
	require.NoError(t, err)
	assert.Len(t, users, 4)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	_, err = env.Users.GetUser(env.Ctx, env.Admin, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.Users.DeleteUser(env.Ctx, env.Admin, 999), domain.ErrNotFound)
}

func TestUpdateUser_Partial(t *testing.T) {
	env := newTestEnv(t)

	updated, err := env.Users.UpdateUser(env.Ctx, env.Admin, env.Bob.ID, domain.UserPatch{Password: ptr("brand-new-pass")})
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", updated.Email)
	assert.Equal(t, domain.RoleRegular, updated.Role)

	_, err = env.Users.Authenticate(env.Ctx, "bob@x.com", "brand-new-pass")
	require.NoError(t, err)

	updated, err = env.Users.UpdateUser(env.Ctx, env.Admin, env.Bob.ID, domain.UserPatch{Role: ptr(domain.RoleAdmin)})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = env.Users.UpdateUser(env.Ctx, env.Admin, env.Bob.ID, domain.UserPatch{Email: ptr("carol@x.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.Users.UpdateUser(env.Ctx, env.Admin, 999, domain.UserPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.Users.DeleteUser(env.Ctx, env.Admin, env.Dave.ID))

	_, err := env.Users.Current(env.Ctx, env.Dave.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
