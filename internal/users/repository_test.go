package users

import (
	"context"
	"testing"

	"icetea/internal/shared/errs"
	"icetea/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) Repository {
	t.Helper()
	return NewRepository(testutil.NewDB(t, &User{}))
}

func TestNotificationsEnabledDefaults(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	enabled, err := repo.NotificationsEnabled(ctx, "no-such-device")
	require.NoError(t, err)
	assert.False(t, enabled, "unregistered devices receive nothing")

	require.NoError(t, repo.Create(ctx, &User{ID: "dev-a", Role: RoleUser, DeviceSecretHash: "x"}))
	enabled, err = repo.NotificationsEnabled(ctx, "dev-a")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetNotificationsEnabled(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &User{ID: "dev-a", Role: RoleUser, DeviceSecretHash: "x"}))

	require.NoError(t, repo.SetNotificationsEnabled(ctx, "dev-a", false))
	enabled, err := repo.NotificationsEnabled(ctx, "dev-a")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, repo.SetNotificationsEnabled(ctx, "dev-a", true))
	enabled, err = repo.NotificationsEnabled(ctx, "dev-a")
	require.NoError(t, err)
	assert.True(t, enabled)

	err = repo.SetNotificationsEnabled(ctx, "ghost", false)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &User{ID: "dev-a", DisplayName: "Ada", Role: RoleUser, DeviceSecretHash: "x"}))

	name := "Ada L."
	user, err := repo.UpdateProfile(ctx, "dev-a", &UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.DisplayName)

	_, err = repo.UpdateProfile(ctx, "ghost", &UpdateProfileRequest{DisplayName: &name})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
