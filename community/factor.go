package community

import (
	"context"

	"github.com/vuquang23/go-steam-guard/totp"
)

// FactorSource supplies the extra factors the server asks for during login.
type FactorSource interface {
	TwoFactorCode(ctx context.Context) (string, error)
	EmailCode(ctx context.Context, emailDomain string) (string, error)
	CaptchaText(ctx context.Context, captchaURL string) (string, error)
}

// TOTPFactors answers two factor challenges from a shared secret. Email and
// captcha challenges need a human and are refused.
type TOTPFactors struct {
	Generator *totp.Generator
}

func (f TOTPFactors) TwoFactorCode(ctx context.Context) (string, error) {
	return f.Generator.Code(ctx)
}

func (TOTPFactors) EmailCode(context.Context, string) (string, error) {
	return "", ErrEmailCodeRequired
}

func (TOTPFactors) CaptchaText(context.Context, string) (string, error) {
	return "", ErrCaptchaRequired
}
