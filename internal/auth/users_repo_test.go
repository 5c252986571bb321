//go:build integration_test || all_tests

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soodoh/openfit/internal/apperr"
	pkgtesting "github.com/soodoh/openfit/pkg/testing"
)

func TestUsersRepo(t *testing.T) {
	repo := NewUsersRepo(pkgtesting.GetDBPool(t))
	ctx := context.Background()

	username := gofakeit.Username()
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		Admin:        true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Create(ctx, u))

	dup := *u
	dup.ID = uuid.New()
	dup.Username = strings.ToUpper(username)
	assert.ErrorIs(t, repo.Create(ctx, &dup), apperr.ErrConflict, "usernames are case insensitive")

	got, err := repo.ByUsername(ctx, strings.ToUpper(username))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.Admin)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	got, err = repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, username, got.Username)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestService_RedisSessions(t *testing.T) {
	rdb := pkgtesting.GetRedisClient(t)
	repo := NewUsersRepo(pkgtesting.GetDBPool(t))
	ctx := context.Background()

	s := NewService(repo, time.Hour, rdb)
	s.HashPasswordFunc = cheapHash
	user, err := s.Register(ctx, Credentials{Username: "lifter", Password: "testpass123"}, false, time.Now())
	require.NoError(t, err)

	token, err := s.Login(ctx, Credentials{Username: "Lifter", Password: "testpass123"}, time.Now())
	require.NoError(t, err)
	assert.Len(t, token, tokenLength)

	checker := NewLoginChecker(time.Hour, rdb)
	id, ok, err := checker.Identity(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, id.UserID)
	assert.False(t, id.Admin)

	loggedOut, err := s.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	_, ok, err = checker.Identity(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}
