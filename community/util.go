package community

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func EncryptPassword(N string, E string, password string) (string, error) {
	n, ok := new(big.Int).SetString(N, 16)
	if !ok {
		return "", fmt.Errorf("%w: can not set string N", ErrInvalidData)
	}
	e, err := strconv.ParseInt(E, 16, 32)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	rsaPubKey := rsa.PublicKey{
		N: n,
		E: int(e),
	}
	encryptedPassword, err := rsa.EncryptPKCS1v15(rand.Reader, &rsaPubKey, []byte(password))
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(encryptedPassword), nil
}

func GenerateSessionID() (string, error) {
	bytes := make([]byte, 12)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func findCookie(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// loginCookie formats the steamid||token value of steamLogin cookies.
func loginCookie(steamID, token string) string {
	return url.QueryEscape(steamID + "||" + token)
}

func loginCookieSteamID(value string) (string, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return "", err
	}
	steamID, _, ok := strings.Cut(raw, "||")
	if !ok {
		return "", errors.New("malformed login cookie")
	}
	return steamID, nil
}
