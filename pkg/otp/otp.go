package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const digits = "0123456789"

// GenerateCode returns a random numeric code of the given length. Codes are
// drawn from crypto/rand so they are safe for password reset and email
// verification flows.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive")
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(digits)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating otp digit: %w", err)
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}
