// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

var ErrMalformedHash = errors.New("malformed password hash")

// Argon2Params are the argon2id cost settings recorded in every encoded hash.
type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

// Hash derives an argon2id key from password with a fresh salt and returns
// it in PHC string form.
func (p Argon2Params) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return p.encode(salt, p.derive(password, salt)), nil
}

func (p Argon2Params) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func (p Argon2Params) encode(salt, key []byte) string {
	var b strings.Builder
	b.WriteString(argon2Prefix)
	fmt.Fprintf(&b, "v=%d$m=%d,t=%d,p=%d$", argon2.Version, p.Memory, p.Time, p.Threads)
	b.WriteString(base64.RawStdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.RawStdEncoding.EncodeToString(key))
	return b.String()
}

// VerifyPassword checks password against an encoded hash using the cost
// settings stored in the hash itself.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, key, err := parseArgon2(encoded)
	if err != nil {
		return false, err
	}

	candidate := params.derive(password, salt)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func IsPasswordHash(s string) bool {
	return strings.HasPrefix(s, argon2Prefix)
}

func parseArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	rest, ok := strings.CutPrefix(encoded, argon2Prefix)
	if !ok {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm", ErrMalformedHash)
	}

	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return params, nil, nil, fmt.Errorf("%w: expected 4 sections, got %d", ErrMalformedHash, len(fields))
	}

	if fields[0] != "v="+strconv.Itoa(argon2.Version) {
		return params, nil, nil, fmt.Errorf("%w: version %q", ErrMalformedHash, fields[0])
	}

	for _, kv := range strings.Split(fields[1], ",") {
		name, raw, found := strings.Cut(kv, "=")
		if !found {
			return params, nil, nil, fmt.Errorf("%w: param %q", ErrMalformedHash, kv)
		}

		bits := 32
		if name == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(raw, 10, bits)
		if err != nil {
			return params, nil, nil, fmt.Errorf("%w: param %q", ErrMalformedHash, kv)
		}

		switch name {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			params.Threads = uint8(n)
		default:
			return params, nil, nil, fmt.Errorf("%w: unknown param %q", ErrMalformedHash, name)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}

	params.SaltLen = len(salt)
	//nolint:gosec // G115: argon2id keys are a few dozen bytes
	params.KeyLen = uint32(len(key))

	return params, salt, key, nil
}
