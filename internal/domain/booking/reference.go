package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	referencePrefix   = "BK"
	referenceLength   = 8
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultReferenceAttempts = 5
)

// ReferenceGenerator produces human-facing booking codes such as BK7Q2MZ0XA.
type ReferenceGenerator struct {
	maxAttempts int
	rand        io.Reader
}

func NewReferenceGenerator(maxAttempts int) *ReferenceGenerator {
	if maxAttempts < 1 {
		maxAttempts = DefaultReferenceAttempts
	}
	return &ReferenceGenerator{maxAttempts: maxAttempts, rand: rand.Reader}
}

// Generate draws candidates until exists reports a free one. exists should be
// bound to the caller's transaction; the unique index on reference_code is
// the final arbiter.
func (g *ReferenceGenerator) Generate(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := g.candidate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhaustedRetries, g.maxAttempts)
}

func (g *ReferenceGenerator) candidate() (string, error) {
	buf := make([]byte, 0, len(referencePrefix)+referenceLength)
	buf = append(buf, referencePrefix...)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < referenceLength; i++ {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("reference entropy: %w", err)
		}
		buf = append(buf, referenceAlphabet[n.Int64()])
	}
	return string(buf), nil
}
