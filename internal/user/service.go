// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/steamybeans/api/internal/core"
)

type Service struct {
	repo          Repository
	validator     *Validator
	hashPasswords bool
	now           func() time.Time
}

type Option func(*Service)

// WithPasswordHashing controls whether passwords are stored as argon2id
// hashes (the default) or as received.
func WithPasswordHashing(enabled bool) Option {
	return func(s *Service) {
		s.hashPasswords = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		validator:     NewValidator(),
		hashPasswords: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(
	ctx context.Context,
	req CreateUserRequest,
) (*CreateUserResponse, error) {
	ctx, span := core.StartSpan(ctx, "user.Create")
	defer span.End()

	if err := s.validator.ValidateCreate(&req); err != nil {
		return nil, err
	}

	password := req.Password
	if s.hashPasswords {
		hash, err := hashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		password = hash
	}

	now := s.now().UTC()
	user := &User{
		Email:      req.Email,
		Password:   password,
		CreatedAt:  now,
		UpdatedAt:  now,
		Attributes: req.Attributes,
	}

	id, err := s.repo.Insert(ctx, user)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", id))

	return &CreateUserResponse{
		Acknowledged: true,
		InsertedID:   id,
	}, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.GetByEmail")
	defer span.End()

	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return user, nil
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	ctx, span := core.StartSpan(ctx, "user.ListAll")
	defer span.End()

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("user.count", len(users)))
	return users, nil
}

// Promote sets the moderator role on every user with the given email.
// Promoting an existing moderator succeeds without change of role.
func (s *Service) Promote(
	ctx context.Context,
	email string,
) (*PromoteResponse, error) {
	ctx, span := core.StartSpan(ctx, "user.Promote")
	defer span.End()

	email = NormalizeEmail(email)

	matched, err := s.repo.UpdateRole(ctx, email, RoleModerator)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return &PromoteResponse{
		Email:   email,
		Role:    RoleModerator,
		Matched: matched,
	}, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
