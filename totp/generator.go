package totp

import (
	"context"
	"time"
)

type Clock interface {
	Now(ctx context.Context) time.Time
}

// SystemClock is the unsynchronised local clock.
type SystemClock struct{}

func (SystemClock) Now(context.Context) time.Time {
	return time.Now()
}

// Generator binds one secret to a clock. The secret is validated once at
// construction and never changes afterwards.
type Generator struct {
	secret string
	clock  Clock
}

func NewGenerator(secret string, clock Clock) (*Generator, error) {
	secret, err := normalizeSecret(secret)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Generator{secret: secret, clock: clock}, nil
}

// Code returns the guard code for the current time window.
func (g *Generator) Code(ctx context.Context) (string, error) {
	return authCode(g.secret, g.clock.Now(ctx).Unix())
}

// ConfirmationKey signs tag with the current time and returns the key together
// with the timestamp it was computed for. Both must be sent in the same request.
func (g *Generator) ConfirmationKey(ctx context.Context, tag string) (string, int64, error) {
	ts := g.clock.Now(ctx).Unix()
	key, err := confirmationKey(g.secret, tag, ts)
	if err != nil {
		return "", 0, err
	}
	return key, ts, nil
}

func (g *Generator) DeviceID(steamID string) string {
	return GenerateDeviceID(steamID)
}
