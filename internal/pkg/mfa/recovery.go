// Package mfa holds helpers shared by multi-factor flows.
package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RecoveryCodeGenerator generates MFA recovery codes.
type RecoveryCodeGenerator interface {
	// Generate returns a slice of unique recovery codes or an error if the
	// random source fails.
	Generate() ([]string, error)
}

// alphabet excludes I, L, O and U so codes survive being read aloud or
// copied by hand.
const alphabet = "ABCDEFGHJKMNPQRSTVWXYZ0123456789"

// DefaultRecoveryCodeCount is used when NewRecoveryCode receives a non-positive count.
const DefaultRecoveryCodeCount = 10

// RecoveryCode generates cryptographically secure recovery codes of the form
// XXXX-XXXX-XXXX-XXXX-XXXX-XXXX.
type RecoveryCode struct {
	count int
}

// NewRecoveryCode returns a generator producing count codes per call.
func NewRecoveryCode(count int) *RecoveryCode {
	if count < 1 {
		count = DefaultRecoveryCodeCount
	}
	return &RecoveryCode{count: count}
}

// Generate produces a set of unique recovery codes.
func (rc *RecoveryCode) Generate() ([]string, error) {
	out := make([]string, 0, rc.count)
	seen := make(map[string]struct{}, rc.count)

	for len(out) < rc.count {
		code, err := generateCode(6, 4)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

func generateCode(groups, size int) (string, error) {
	var sb strings.Builder
	sb.Grow(groups*size + groups - 1)

	max := big.NewInt(int64(len(alphabet)))
	for g := 0; g < groups; g++ {
		if g > 0 {
			sb.WriteByte('-')
		}
		for i := 0; i < size; i++ {
			num, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			sb.WriteByte(alphabet[num.Int64()])
		}
	}

	return sb.String(), nil
}
