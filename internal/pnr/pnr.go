package pnr

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/yashu1412/Flight-Booking/internal/domain"
)

const (
	Length      = 6
	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxAttempts = 10
)

var ErrExhausted = fmt.Errorf("pnr generation exhausted after %d attempts: %w", MaxAttempts, domain.ErrConflict)

// ExistsFunc reports whether a PNR is already in use.
type ExistsFunc func(ctx context.Context, pnr string) (bool, error)

var alphabetSize = big.NewInt(int64(len(alphabet)))

func Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateUnique draws PNRs until exists reports a free one.
func GenerateUnique(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := Generate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check pnr: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Valid(code string) bool {
	code = Normalize(code)
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
