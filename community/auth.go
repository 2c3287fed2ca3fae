package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vuquang23/go-steam-guard/netutil"
	"github.com/vuquang23/go-steam-guard/totp"
)

type Client struct {
	transport netutil.Transport

	loginMu sync.Mutex

	mu          sync.Mutex
	maxAttempts int
	domains     []string
	state       LoginState
	session     *Session
}

func NewClient(transport netutil.Transport) *Client {
	return &Client{
		transport:   transport,
		maxAttempts: DefaultMaxAttempts,
		domains:     append([]string(nil), defaultTrustedDomains...),
	}
}

// SetMaxAttempts caps the submit rounds of one Login call. A Login already
// running keeps the ceiling it started with.
func (c *Client) SetMaxAttempts(n int) {
	if n <= 0 {
		n = DefaultMaxAttempts
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAttempts = n
}

// SetTrustedDomains replaces the domains the session cookies are written to.
func (c *Client) SetTrustedDomains(domains ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains = append([]string(nil), domains...)
}

func (c *Client) settings() (int, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxAttempts, append([]string(nil), c.domains...)
}

// Login runs the login state machine until the server grants a session, a
// fatal answer arrives or the attempt ceiling is reached. Every round fetches
// a fresh RSA key since keys are single use.
func (c *Client) Login(ctx context.Context, details LoginDetails) (*Session, error) {
	if details.AccountName == "" || details.Password == "" {
		return nil, fmt.Errorf("%w: missing account name or password", ErrInvalidData)
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	maxAttempts, domains := c.settings()
	c.setState(StateStart)
	factors := LoginFactors{
		TwoFactorCode: details.TwoFactorCode,
		EmailCode:     details.EmailCode,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := c.doLogin(ctx, details, factors)
		if err != nil {
			if errors.Is(err, netutil.ErrTransientNetwork) && attempt < maxAttempts && ctx.Err() == nil {
				log.Printf("login: round %d failed on network, retrying\n", attempt)
				continue
			}
			return nil, c.fail(err)
		}

		kind := classify(res)
		log.Printf("login: round %d answered %s\n", attempt, kind)

		switch kind {
		case ResponseSuccess:
			session, err := c.finalize(ctx, res, domains)
			if err != nil {
				return nil, c.fail(err)
			}
			c.setSession(session)
			return session, nil

		case ResponseInvalidCredentials:
			return nil, c.fail(ErrInvalidCredentials)

		case ResponseTooManyFailures:
			return nil, c.fail(ErrTooManyLoginFailures)

		case ResponseDeviceLockout:
			return nil, c.fail(ErrDeviceLockout)

		case ResponseNeedsTwoFactor:
			c.setState(StateAwaitingFactors)
			if details.Factors == nil {
				return nil, c.fail(ErrTwoFactorRequired)
			}
			code, err := details.Factors.TwoFactorCode(ctx)
			if err != nil {
				return nil, c.fail(err)
			}
			factors.TwoFactorCode = code

		case ResponseNeedsEmail:
			c.setState(StateAwaitingFactors)
			factors.EmailSteamID = string(res.EmailSteamID)
			if details.Factors == nil {
				return nil, c.fail(ErrEmailCodeRequired)
			}
			code, err := details.Factors.EmailCode(ctx, res.EmailDomain)
			if err != nil {
				return nil, c.fail(err)
			}
			factors.EmailCode = code

		case ResponseNeedsCaptcha:
			c.setState(StateAwaitingFactors)
			factors.CaptchaGID = string(res.CaptchaGID)
			if details.Factors == nil {
				return nil, c.fail(fmt.Errorf("%w: %s", ErrCaptchaRequired, captchaUrl+factors.CaptchaGID))
			}
			text, err := details.Factors.CaptchaText(ctx, captchaUrl+factors.CaptchaGID)
			if err != nil {
				return nil, c.fail(err)
			}
			factors.CaptchaText = text

		case ResponseRetryable:
			if res.Message != "" {
				log.Printf("login: retrying after %q\n", res.Message)
			}
		}
	}

	return nil, c.fail(fmt.Errorf("%w: %d rounds", ErrTooManyAttempts, maxAttempts))
}

func (c *Client) doLogin(ctx context.Context, details LoginDetails, factors LoginFactors) (*loginRes, error) {
	key, err := c.GetRSAKey(ctx, details.AccountName)
	if err != nil {
		return nil, err
	}
	encryptedPassword, err := EncryptPassword(key.Modulus, key.Exponent, details.Password)
	if err != nil {
		return nil, err
	}

	captchaGID := factors.CaptchaGID
	if captchaGID == "" {
		captchaGID = "-1"
	}
	values := url.Values{
		"captcha_text":      {factors.CaptchaText},
		"captchagid":        {captchaGID},
		"emailauth":         {factors.EmailCode},
		"emailsteamid":      {factors.EmailSteamID},
		"password":          {encryptedPassword},
		"remember_login":    {"true"},
		"rsatimestamp":      {key.Timestamp},
		"twofactorcode":     {factors.TwoFactorCode},
		"username":          {details.AccountName},
		"loginfriendlyname": {""},
		"donotcache":        {strconv.FormatInt(time.Now().Unix()*1000, 10)},
		"oauth_client_id":   {oauthClientID},
		"oauth_scope":       {oauthScope},
	}
	body, err := c.transport.PostForm(ctx, doLoginUrl, values)
	if err != nil {
		return nil, err
	}

	var res loginRes
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: login response: %w", ErrInvalidData, err)
	}
	return &res, nil
}

// classify maps the loosely typed login response onto a ResponseKind. The
// message checks depend on Steam's English wording. Credential and lockout
// messages win over factor flags because Steam raises captcha_needed
// alongside a wrong password.
func classify(res *loginRes) ResponseKind {
	msg := strings.ToLower(res.Message)
	switch {
	case res.Success:
		return ResponseSuccess
	case strings.Contains(msg, msgInvalidCredentials):
		return ResponseInvalidCredentials
	case strings.Contains(msg, msgTooManyFailures):
		return ResponseTooManyFailures
	case strings.Contains(msg, msgDeviceLockout):
		return ResponseDeviceLockout
	case res.RequiresTwoFactor:
		return ResponseNeedsTwoFactor
	case res.EmailAuthNeeded:
		return ResponseNeedsEmail
	case res.CaptchaNeeded:
		return ResponseNeedsCaptcha
	default:
		return ResponseRetryable
	}
}

func (c *Client) GetRSAKey(ctx context.Context, accountName string) (*RSAKey, error) {
	values := url.Values{
		"username":   {accountName},
		"donotcache": {strconv.FormatInt(time.Now().Unix()*1000, 10)},
	}
	body, err := c.transport.PostForm(ctx, rsaUrl, values)
	if err != nil {
		return nil, err
	}

	var ret getRSAKeyRes
	if err := json.Unmarshal(body, &ret); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRSAKey, err)
	}
	if !ret.Success || ret.PublickeyMod == "" || ret.PublickeyExp == "" {
		return nil, ErrRSAKey
	}

	return &RSAKey{
		Modulus:   ret.PublickeyMod,
		Exponent:  ret.PublickeyExp,
		Timestamp: ret.Timestamp,
	}, nil
}

func (c *Client) fail(err error) error {
	c.setState(StateFatal)
	return err
}

func (c *Client) setState(state LoginState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.state = StateSuccess
}

func (c *Client) State() LoginState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the current session, or nil before login.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	clone := *c.session
	clone.Domains = append([]string(nil), c.session.Domains...)
	return &clone
}

func (c *Client) GetSteamID() string {
	if s := c.Session(); s != nil {
		return s.SteamID
	}
	return ""
}

func (c *Client) GetSessionID() string {
	if s := c.Session(); s != nil {
		return s.SessionID
	}
	return ""
}

func (c *Client) GetDeviceID() string {
	if steamID := c.GetSteamID(); steamID != "" {
		return totp.GenerateDeviceID(steamID)
	}
	return ""
}

func (c *Client) GetCookies(domain string) []*http.Cookie {
	return c.transport.Cookies(domain)
}
