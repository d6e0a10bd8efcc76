// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/steamybeans/api/internal/core"
)

// Repository is the persistence gateway for the users collection.
type Repository interface {
	Insert(ctx context.Context, user *User) (string, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, email, role string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	col     *mongo.Collection
	metrics *core.Metrics
}

func NewRepository(col *mongo.Collection, metrics *core.Metrics) Repository {
	return &repository{col: col, metrics: metrics}
}

// EnsureIndexes creates the unique email index the gateway relies on to
// reject duplicate accounts.
func EnsureIndexes(ctx context.Context, col *mongo.Collection) error {
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, user *User) (id string, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveDB("insert", start, err) }()

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	if _, err = r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert user: %w", core.ErrDuplicateKey)
		}
		return "", core.NewPersistenceError("insert user", err)
	}

	return user.ID.Hex(), nil
}

func (r *repository) FindByEmail(
	ctx context.Context,
	email string,
) (_ *User, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveDB("find_one", start, err) }()

	var user User
	err = r.col.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.NewPersistenceError("find user by email", err)
	}

	user.Attributes = plainMap(user.Attributes)
	return &user, nil
}

func (r *repository) FindAll(ctx context.Context) (_ []User, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveDB("find_all", start, err) }()

	cursor, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, core.NewPersistenceError("list users", err)
	}

	users := []User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, core.NewPersistenceError("list users", err)
	}

	for i := range users {
		users[i].Attributes = plainMap(users[i].Attributes)
	}

	return users, nil
}

func (r *repository) UpdateRole(
	ctx context.Context,
	email, role string,
) (_ int64, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveDB("update_many", start, err) }()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "role", Value: role},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	res, err := r.col.UpdateMany(ctx, bson.D{{Key: "email", Value: email}}, update)
	if err != nil {
		return 0, core.NewPersistenceError("update user role", err)
	}

	if res.MatchedCount == 0 {
		err = fmt.Errorf("update user role: %w", core.ErrNotFound)
		return 0, err
	}

	return res.MatchedCount, nil
}

func (r *repository) Count(ctx context.Context) (_ int64, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveDB("count", start, err) }()

	n, err := r.col.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, core.NewPersistenceError("count users", err)
	}
	return n, nil
}

// plainMap converts driver container types decoded into inline attributes
// back to the maps and slices encoding/json understands.
func plainMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case bson.M:
		return plainMap(val)
	case map[string]any:
		return plainMap(val)
	case bson.A:
		return plainSlice(val)
	case []any:
		return plainSlice(val)
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	default:
		return v
	}
}

func plainSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = plainValue(v)
	}
	return out
}
