// AngelaMos | 2026
// password.go

package user

import (
	"fmt"

	"github.com/steamybeans/api/internal/core"
)

// passwordParams sets the argon2id cost for stored user credentials.
var passwordParams = core.DefaultArgon2Params

func hashPassword(plain string) (string, error) {
	hash, err := passwordParams.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
