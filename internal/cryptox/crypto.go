// Package cryptox hashes short-lived secrets (emailed one-time codes) so they
// are never stored in clear text.
package cryptox

import (
	"crypto/subtle"

	"github.com/Vicktor007/store-lit/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewSalt.
const SaltSize = 16

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashCode derives a 32-byte argon2id hash of code with the given salt.
func HashCode(code string, salt []byte) []byte {
	return argon2.IDKey([]byte(code), salt, 1, 64*1024, 4, 32)
}

// VerifyCode reports whether code hashes to want under salt. The comparison
// runs in constant time.
func VerifyCode(code string, salt, want []byte) bool {
	got := HashCode(code, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, want) == 1
}
