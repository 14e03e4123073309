package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokalrunner/pkg/models"
	"lokalrunner/pkg/pincode"
)

func TestRegisterIsIdempotentPerEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	first, err := svc.Register(ctx, "ana@test", "Ana")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleClient}, first.Roles)

	second, err := svc.Register(ctx, "ana@test", "Ana Again")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Register(ctx, "", "Ana")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSetPin(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@test", "Ana")
	require.NoError(t, err)

	for _, bad := range []string{"", "123", "1234567", "12ab", "one2"} {
		require.ErrorIs(t, svc.SetPin(ctx, user.ID, bad), ErrInvalidRequest, "pin %q", bad)
	}

	require.NoError(t, svc.SetPin(ctx, user.ID, "4321"))

	stored, err := store.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PinHash)
	assert.NotContains(t, *stored.PinHash, "4321", "the PIN itself is never stored")

	ok, err := pincode.Verify(*stored.PinHash, "4321")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantRunnerCreatesProfile(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, "rui@test", "Rui")
	require.NoError(t, err)

	roles, err := svc.GrantRunner(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleClient, models.RoleRunner}, roles)

	profile, err := store.Runner().GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.False(t, profile.IsActive, "new runners start offline")
	assert.Nil(t, profile.BaseLat)

	_, err = svc.GrantRunner(ctx, user.ID)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.GrantRunner(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGrantProvider(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, "pia@test", "Pia")
	require.NoError(t, err)

	roles, err := svc.GrantProvider(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleClient, models.RoleProvider}, roles)

	_, err = svc.GrantProvider(ctx, user.ID)
	require.ErrorIs(t, err, ErrConflict)
}
