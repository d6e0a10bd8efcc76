// AngelaMos | 2026
// dto.go

package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"
)

var errNotObject = errors.New("request body must be a JSON object")

// CreateUserRequest is the create payload. Email and password are typed;
// every other non-reserved key is carried through in Attributes.
type CreateUserRequest struct {
	Email      string         `json:"email"    validate:"required,email,max=254"`
	Password   string         `json:"password" validate:"required,min=8"`
	Attributes map[string]any `json:"-"        validate:"-"`
}

func (r *CreateUserRequest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errNotObject
	}

	email, err := stringField(raw, "email")
	if err != nil {
		return err
	}
	password, err := stringField(raw, "password")
	if err != nil {
		return err
	}

	attrs := make(map[string]any, len(raw))
	for key, value := range raw {
		if isReservedKey(key) {
			continue
		}
		attrs[key] = numericValue(value)
	}

	r.Email = email
	r.Password = password
	r.Attributes = attrs
	return nil
}

func stringField(raw map[string]any, key string) (string, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return "", nil
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s, nil
}

// numericValue replaces json.Number with int64 when the literal is an
// integer that fits, float64 otherwise, so large integers keep every digit.
func numericValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, inner := range val {
			val[k] = numericValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = numericValue(inner)
		}
		return val
	default:
		return v
	}
}

type CreateUserResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UserResponse struct {
	ID         string
	Email      string
	Role       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Attributes map[string]any
}

// MarshalJSON flattens attributes next to the managed fields so the
// document reads back the way it was submitted.
func (u UserResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Attributes)+5)
	maps.Copy(out, u.Attributes)

	out["id"] = u.ID
	out["email"] = u.Email
	if u.Role != "" {
		out["role"] = u.Role
	}
	if !u.CreatedAt.IsZero() {
		out["created_at"] = u.CreatedAt
	}
	if !u.UpdatedAt.IsZero() {
		out["updated_at"] = u.UpdatedAt
	}

	return json.Marshal(out)
}

type PromoteResponse struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Matched int64  `json:"matched"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		Attributes: u.Attributes,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
