// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamybeans/api/internal/core"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, Repository) {
	t.Helper()

	repo := NewMemoryRepository()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(repo, opts...), repo
}

func TestServiceCreateHashesPassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateUserRequest{
		Email:      "A@Test.com",
		Password:   "longenough",
		Attributes: map[string]any{"name": "Ada"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.Len(t, resp.InsertedID, 24)

	stored, err := repo.FindByEmail(ctx, "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, resp.InsertedID, stored.ID.Hex())
	assert.Equal(t, "Ada", stored.Attributes["name"])
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Empty(t, stored.Role)

	require.True(t, core.IsPasswordHash(stored.Password))
	ok, err := core.VerifyPassword("longenough", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceCreateWithoutHashing(t *testing.T) {
	svc, repo := newTestService(t, WithPasswordHashing(false))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "b@test.com", Password: "longenough"})
	require.NoError(t, err)

	stored, err := repo.FindByEmail(ctx, "b@test.com")
	require.NoError(t, err)
	assert.Equal(t, "longenough", stored.Password)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "nope", Password: "short"})

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Fields, 2)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServiceCreateDuplicateIgnoresCase(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "dup@test.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserRequest{Email: "DUP@test.com", Password: "longenough"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestServiceGetByEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "a@test.com", Password: "longenough"})
	require.NoError(t, err)

	u, err := svc.GetByEmail(ctx, "  A@TEST.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@test.com", u.Email)

	_, err = svc.GetByEmail(ctx, "unknown@test.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestServiceListAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	assert.Empty(t, users)

	for _, email := range []string{"one@test.com", "two@test.com", "three@test.com"} {
		_, err := svc.Create(ctx, CreateUserRequest{Email: email, Password: "longenough"})
		require.NoError(t, err)
	}

	users, err = svc.ListAll(ctx)
	require.NoError(t, err)

	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{"one@test.com", "two@test.com", "three@test.com"}, emails)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestServicePromote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Email: "mod@test.com", Password: "longenough"})
	require.NoError(t, err)

	resp, err := svc.Promote(ctx, "MOD@test.com")
	require.NoError(t, err)
	assert.Equal(t, &PromoteResponse{
		Email:   "mod@test.com",
		Role:    RoleModerator,
		Matched: 1,
	}, resp)

	u, err := svc.GetByEmail(ctx, "mod@test.com")
	require.NoError(t, err)
	assert.True(t, u.IsModerator())

	_, err = svc.Promote(ctx, "mod@test.com")
	require.NoError(t, err)

	u, err = svc.GetByEmail(ctx, "mod@test.com")
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, u.Role)

	_, err = svc.Promote(ctx, "ghost@test.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
