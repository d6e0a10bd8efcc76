// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a document in the users collection. Fields the API does not know
// about are kept in Attributes and stored inline at the top level.
type User struct {
	ID         bson.ObjectID  `bson:"_id,omitempty"`
	Email      string         `bson:"email"`
	Password   string         `bson:"password"`
	Role       string         `bson:"role,omitempty"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
	Attributes map[string]any `bson:",inline"`
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

const RoleModerator = "Moderator"

// reservedKeys are managed by the service and never taken from a payload.
var reservedKeys = map[string]struct{}{
	"_id":        {},
	"id":         {},
	"email":      {},
	"password":   {},
	"role":       {},
	"created_at": {},
	"updated_at": {},
}

func isReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}
