package community

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vuquang23/go-steam-guard/netutil"
)

// finalize trades the OAuth token for web login tokens and writes one
// consistent cookie set to every trusted domain.
func (c *Client) finalize(ctx context.Context, res *loginRes, domains []string) (*Session, error) {
	if res.OAuth == "" {
		return nil, fmt.Errorf("%w: login succeeded without oauth payload", ErrInvalidData)
	}
	var oauth oAuth
	if err := json.Unmarshal([]byte(res.OAuth), &oauth); err != nil {
		return nil, fmt.Errorf("%w: oauth payload: %w", ErrInvalidData, err)
	}
	if oauth.SteamID == "" || oauth.OAuthToken == "" {
		return nil, fmt.Errorf("%w: oauth payload misses steamid or token", ErrInvalidData)
	}

	token, tokenSecure, err := c.exchangeToken(ctx, oauth)
	if err != nil {
		return nil, err
	}

	sessionID, err := c.freshSessionID(ctx)
	if err != nil {
		return nil, err
	}

	session := &Session{
		SteamID:          oauth.SteamID,
		OAuthToken:       oauth.OAuthToken,
		SessionID:        sessionID,
		SteamLogin:       loginCookie(oauth.SteamID, token),
		SteamLoginSecure: loginCookie(oauth.SteamID, tokenSecure),
		Domains:          domains,
	}

	cookies := session.cookies()
	for _, domain := range session.Domains {
		c.transport.SetCookies(domain, cookies)
	}
	if err := c.verifySession(session); err != nil {
		return nil, err
	}

	log.Printf("login: session written to %d domains\n", len(session.Domains))
	return session, nil
}

func (c *Client) exchangeToken(ctx context.Context, oauth oAuth) (string, string, error) {
	body, err := c.transport.PostForm(ctx, getWGTokenUrl, url.Values{"access_token": {oauth.OAuthToken}})
	if err != nil {
		return "", "", err
	}

	var res getWGTokenRes
	if err := json.Unmarshal(body, &res); err != nil {
		return "", "", fmt.Errorf("%w: token exchange: %w", ErrInvalidData, err)
	}

	token, tokenSecure := res.Response.Token, res.Response.TokenSecure
	if token == "" {
		token = oauth.WGToken
	}
	if tokenSecure == "" {
		tokenSecure = oauth.WGTokenSecure
	}
	if token == "" || tokenSecure == "" {
		return "", "", fmt.Errorf("%w: token exchange returned no web tokens", ErrInvalidData)
	}
	return token, tokenSecure, nil
}

// freshSessionID loads the community page so the server issues a sessionid
// cookie. A random id is used when none arrives.
func (c *Client) freshSessionID(ctx context.Context) (string, error) {
	if _, err := c.transport.Get(ctx, baseUrl, nil); err != nil {
		log.Warning("login: failed to load community page for a session id")
		log.WarningE(err)
	}
	if sessionID := findCookie(c.transport.Cookies(netutil.DomainCommunity), cookieSessionID); sessionID != "" {
		return sessionID, nil
	}
	return GenerateSessionID()
}

func (c *Client) verifySession(session *Session) error {
	for _, domain := range session.Domains {
		cookies := c.transport.Cookies(domain)
		if findCookie(cookies, cookieSessionID) != session.SessionID {
			return fmt.Errorf("%w: sessionid missing on %s", ErrInconsistentSession, domain)
		}
		for _, name := range []string{cookieSteamLogin, cookieSteamLoginSecure} {
			steamID, err := loginCookieSteamID(findCookie(cookies, name))
			if err != nil || steamID != session.SteamID {
				return fmt.Errorf("%w: %s on %s", ErrInconsistentSession, name, domain)
			}
		}
	}
	return nil
}

func (s *Session) cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: cookieSessionID, Value: s.SessionID},
		{Name: cookieSteamLogin, Value: s.SteamLogin},
		{Name: cookieSteamLoginSecure, Value: s.SteamLoginSecure, Secure: true},
		{Name: cookieLanguage, Value: "english"},
		{Name: cookieMobileVersion, Value: mobileClientVersion},
		{Name: cookieMobileClient, Value: mobileClient},
		{Name: cookieBirthtime, Value: birthtimeSentinel},
	}
}

// expiredCookies deletes the cookies finalize wrote. Steam_Language predates
// the login and is kept.
func (s *Session) expiredCookies() []*http.Cookie {
	var cookies []*http.Cookie
	for _, cookie := range s.cookies() {
		if cookie.Name == cookieLanguage {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Secure: cookie.Secure, MaxAge: -1})
	}
	return cookies
}

// Logout ends the web session on the server, expires its cookies on every
// domain they were written to and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	session := c.Session()
	if session == nil {
		return nil
	}

	_, err := c.transport.PostForm(ctx, logoutUrl, url.Values{cookieSessionID: {session.SessionID}})

	expired := session.expiredCookies()
	for _, domain := range session.Domains {
		c.transport.SetCookies(domain, expired)
	}

	c.mu.Lock()
	c.session = nil
	c.state = StateStart
	c.mu.Unlock()

	return err
}
