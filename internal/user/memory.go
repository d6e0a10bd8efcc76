// AngelaMos | 2026
// memory.go

package user

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/steamybeans/api/internal/core"
)

// memoryRepository keeps users in process. It mirrors the Mongo gateway's
// semantics, including the unique email constraint.
type memoryRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Insert(_ context.Context, user *User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Email == user.Email {
			return "", fmt.Errorf("insert user: %w", core.ErrDuplicateKey)
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	r.users = append(r.users, cloneUser(user))
	return user.ID.Hex(), nil
}

func (r *memoryRepository) FindByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].Email == email {
			u := cloneUser(&r.users[i])
			return &u, nil
		}
	}

	return nil, fmt.Errorf("find user by email: %w", core.ErrNotFound)
}

func (r *memoryRepository) FindAll(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for i := range r.users {
		users = append(users, cloneUser(&r.users[i]))
	}
	return users, nil
}

func (r *memoryRepository) UpdateRole(
	_ context.Context,
	email, role string,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched int64
	now := time.Now().UTC()
	for i := range r.users {
		if r.users[i].Email == email {
			r.users[i].Role = role
			r.users[i].UpdatedAt = now
			matched++
		}
	}

	if matched == 0 {
		return 0, fmt.Errorf("update user role: %w", core.ErrNotFound)
	}
	return matched, nil
}

func (r *memoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.users)), nil
}

func cloneUser(u *User) User {
	c := *u
	c.Attributes = maps.Clone(u.Attributes)
	return c
}
