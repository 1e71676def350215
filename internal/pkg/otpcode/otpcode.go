package otpcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidLength is returned when the requested code length is out of range.
var ErrInvalidLength = errors.New("otpcode: length must be between 4 and 10")

// Generator produces one-time numeric codes.
type Generator interface {
	// Generate returns a decimal string of exactly length digits.
	Generate(length int) (string, error)
}

// CryptoGenerator draws codes from crypto/rand.
//
// Codes are uniform over [0, 10^length) and left-padded with zeros, so
// leading-zero combinations are part of the code space.
type CryptoGenerator struct{}

// NewCrypto returns a CryptoGenerator.
func NewCrypto() *CryptoGenerator {
	return &CryptoGenerator{}
}

// Generate returns a decimal string of exactly length digits.
func (*CryptoGenerator) Generate(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", ErrInvalidLength
	}

	maxExclusive := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, maxExclusive)
	if err != nil {
		return "", fmt.Errorf("otpcode: read random: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
