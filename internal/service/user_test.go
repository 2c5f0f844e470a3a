package service

import (
	"context"
	"testing"
	"time"

	"tush00nka/chattik/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultsAndIdempotence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	anon, err := env.users.Register(ctx, "  +100 ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "+100", anon.Phone)
	assert.Equal(t, DefaultUserName, anon.Name)
	assert.Equal(t, "П", anon.Avatar)
	assert.True(t, anon.IsOnline)

	first, err := env.users.Register(ctx, "+1", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "A", first.Avatar)

	second, err := env.users.Register(ctx, "+1", "Alicia", "🙂")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alicia", second.Name)
	assert.Equal(t, "🙂", second.Avatar)

	var count int64
	require.NoError(t, env.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRegisterRequiresPhone(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.users.Register(context.Background(), " ", "x", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchByPhone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	alice := env.register(t, "+1", "Alice")

	got, err := env.users.SearchByPhone(ctx, "+1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = env.users.SearchByPhone(ctx, "+2")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPresenceIsDerivedAtReadTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	alice := env.register(t, "+1", "Alice")
	me := env.register(t, "+2", "Me")

	require.NoError(t, env.users.SetOnlineStatus(ctx, alice.ID, false))

	// только что была в сети - считается онлайн
	users, err := env.users.ListUsers(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsOnline)

	// last_seen старше окна - офлайн
	stale := time.Now().UTC().Add(-model.PresenceWindow - time.Minute)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", alice.ID).Update("last_seen", stale).Error)

	got, err := env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOnline)

	// явный флаг побеждает устаревший last_seen
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", alice.ID).
		Updates(map[string]interface{}{"is_online": true, "last_seen": stale}).Error)
	got, err = env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOnline)
}

func TestSetOnlineStatusUnknownUserIsNotAnError(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.NoError(t, env.users.SetOnlineStatus(context.Background(), 4242, true))
	assert.ErrorIs(t, env.users.SetOnlineStatus(context.Background(), 0, true), ErrInvalidArgument)
}

func TestContacts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	me := env.register(t, "+1", "Me")
	bob := env.register(t, "+2", "Bob")

	require.NoError(t, env.contacts.AddContact(ctx, me.ID, bob.ID))
	require.NoError(t, env.contacts.AddContact(ctx, me.ID, bob.ID))

	contacts, err := env.contacts.ListContacts(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, bob.ID, contacts[0].ID)
	assert.True(t, contacts[0].IsOnline)

	assert.ErrorIs(t, env.contacts.AddContact(ctx, me.ID, me.ID), ErrInvalidArgument)
	assert.ErrorIs(t, env.contacts.AddContact(ctx, me.ID, 999), ErrUserNotFound)
}
