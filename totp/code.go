package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	authenticator "github.com/bbqtd/go-steam-authenticator"
	"github.com/google/uuid"
)

// GenerateTotpCode returns the 5 character Steam Guard code for sharedSecret
// at t.
func GenerateTotpCode(sharedSecret string, t time.Time) (string, error) {
	secret, err := normalizeSecret(sharedSecret)
	if err != nil {
		return "", err
	}
	return authCode(secret, t.Unix())
}

// GenerateConfirmationKey signs tag at t. The server checks the key against
// the tag of the endpoint being called, so every endpoint needs its own key.
func GenerateConfirmationKey(identitySecret string, tag string, t time.Time) (string, error) {
	secret, err := normalizeSecret(identitySecret)
	if err != nil {
		return "", err
	}
	return confirmationKey(secret, tag, t.Unix())
}

// GenerateDeviceID derives the mobile device id of an account from its 64 bit
// steam id.
func GenerateDeviceID(steamID string) string {
	sum := sha1.Sum([]byte(steamID))
	var u uuid.UUID
	copy(u[:], sum[:16])
	return deviceIDPrefix + u.String()
}

func authCode(secret string, ts int64) (string, error) {
	code, err := authenticator.GenerateAuthCode(secret, timerAt(ts))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return code, nil
}

func confirmationKey(secret string, tag string, ts int64) (string, error) {
	var (
		key string
		err error
	)
	switch tag {
	case TagList:
		key, err = authenticator.GenerateLoadConfirmationCode(secret, timerAt(ts))
	case TagAllow:
		key, err = authenticator.GenerateAcceptTradeCode(secret, timerAt(ts))
	case TagCancel:
		key, err = authenticator.GenerateCancelCode(secret, timerAt(ts))
	default:
		// The library only signs the bare "details" tag; the details page of
		// one confirmation is tagged with its id appended.
		return signTag(secret, tag, ts)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return key, nil
}

func signTag(secret string, tag string, ts int64) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 8, 8+len(tag))
	binary.BigEndian.PutUint64(buf, uint64(ts))
	buf = append(buf, tag...)

	mac := hmac.New(sha1.New, raw)
	mac.Write(buf)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func timerAt(ts int64) func() uint64 {
	return func() uint64 {
		return uint64(ts)
	}
}

// normalizeSecret trims secret and checks that it decodes.
func normalizeSecret(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	return secret, nil
}

func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return raw, nil
}
