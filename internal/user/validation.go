// AngelaMos | 2026
// validation.go

package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/steamybeans/api/internal/core"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: core.NewValidator()}
}

// ValidateCreate checks a create payload and normalizes its email in place.
// It returns a *core.ValidationError listing every violated field.
func (v *Validator) ValidateCreate(req *CreateUserRequest) error {
	req.Email = strings.TrimSpace(req.Email)

	if err := v.validate.Struct(req); err != nil {
		return core.ValidationErrorFrom(err)
	}

	req.Email = NormalizeEmail(req.Email)
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
