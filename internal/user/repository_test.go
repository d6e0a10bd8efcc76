// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/steamybeans/api/internal/config"
	"github.com/steamybeans/api/internal/core"
)

// testMongoRepository connects to MONGO_TEST_URI and skips when no server
// is reachable. Each test gets its own collection.
func testMongoRepository(t *testing.T) Repository {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:            uri,
		Name:           "steamybeans_test",
		MaxPoolSize:    10,
		ConnectTimeout: 2 * time.Second,
	}, "steamybeans-test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	col := db.Collection("users_" + bson.NewObjectID().Hex())
	require.NoError(t, EnsureIndexes(ctx, col))

	t.Cleanup(func() {
		_ = col.Drop(context.Background())
		_ = db.Close(context.Background())
	})

	return NewRepository(col, core.NewMetrics(prometheus.NewRegistry()))
}

func TestMongoRepositoryRoundTrip(t *testing.T) {
	repo := testMongoRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	id, err := repo.Insert(ctx, &User{
		Email:     "a@test.com",
		Password:  "hashed",
		CreatedAt: now,
		UpdatedAt: now,
		Attributes: map[string]any{
			"name":    "Ada",
			"address": map[string]any{"city": "Lisbon"},
			"tags":    []any{"espresso"},
		},
	})
	require.NoError(t, err)

	u, err := repo.FindByEmail(ctx, "a@test.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID.Hex())
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, "Ada", u.Attributes["name"])
	assert.Equal(t, map[string]any{"city": "Lisbon"}, u.Attributes["address"])
	assert.Equal(t, []any{"espresso"}, u.Attributes["tags"])

	_, err = repo.Insert(ctx, &User{Email: "a@test.com", Password: "x"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = repo.FindByEmail(ctx, "missing@test.com")
	assert.ErrorIs(t, err, core.ErrNotFound)

	matched, err := repo.UpdateRole(ctx, "a@test.com", RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	_, err = repo.UpdateRole(ctx, "missing@test.com", RoleModerator)
	assert.ErrorIs(t, err, core.ErrNotFound)

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, RoleModerator, users[0].Role)
}

func TestPlainValue(t *testing.T) {
	oid := bson.NewObjectID()
	when := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	in := bson.D{
		{Key: "profile", Value: bson.D{{Key: "city", Value: "Lisbon"}}},
		{Key: "tags", Value: bson.A{"espresso", bson.D{{Key: "size", Value: int32(2)}}}},
		{Key: "ref", Value: oid},
		{Key: "seen", Value: bson.NewDateTimeFromTime(when)},
		{Key: "meta", Value: bson.M{"k": bson.A{"v"}}},
	}

	assert.Equal(t, map[string]any{
		"profile": map[string]any{"city": "Lisbon"},
		"tags":    []any{"espresso", map[string]any{"size": int32(2)}},
		"ref":     oid.Hex(),
		"seen":    when,
		"meta":    map[string]any{"k": []any{"v"}},
	}, plainValue(in))

	assert.Nil(t, plainMap(nil))
}
