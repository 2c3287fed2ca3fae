package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Transport is the HTTP collaborator shared by the login, time sync and
// confirmation clients. Cookies are scoped per registered domain.
type Transport interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
	Cookies(domain string) []*http.Cookie
	SetCookies(domain string, cookies []*http.Cookie)
}

var _ Transport = (*Session)(nil)

// Session is a Transport backed by an http.Client and a cookie jar.
type Session struct {
	client *http.Client

	mu      sync.RWMutex
	timeout time.Duration
}

func NewSession() (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	s := &Session{
		client:  &http.Client{Jar: jar},
		timeout: DefaultTimeout,
	}
	s.SetCookies(DomainCommunity, []*http.Cookie{
		{Name: "Steam_Language", Value: "english"},
		{Name: "timezoneOffset", Value: "0,0"},
	})
	return s, nil
}

func (s *Session) SetProxy(proxy string) error {
	proxyUrl, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	s.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyUrl)}
	return nil
}

// SetTimeout bounds every call made through the session. Non-positive values
// restore DefaultTimeout.
func (s *Session) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
}

func (s *Session) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if len(params) != 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return s.do(ctx, req)
}

func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, err
	}
	req := NewPostForm(rawURL, form)
	req.Header.Set("Origin", origin(req.URL))
	req.Header.Set("Referer", origin(req.URL)+"/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return s.do(ctx, req)
}

func (s *Session) Cookies(domain string) []*http.Cookie {
	jarCookies := s.client.Jar.Cookies(domainURL(domain))
	cookies := make([]*http.Cookie, 0, len(jarCookies))
	for _, cookie := range jarCookies {
		clone := *cookie
		cookies = append(cookies, &clone)
	}
	return cookies
}

func (s *Session) SetCookies(domain string, cookies []*http.Cookie) {
	s.client.Jar.SetCookies(domainURL(domain), cookies)
}

func (s *Session) do(ctx context.Context, req *http.Request) ([]byte, error) {
	s.mu.RLock()
	timeout := s.timeout
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req = req.WithContext(ctx)

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "*/*")

	response, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransientNetwork, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientNetwork, err)
	}

	switch {
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %w", ErrTransientNetwork, statusError(req, response.StatusCode))
	case response.StatusCode >= http.StatusBadRequest:
		return nil, statusError(req, response.StatusCode)
	}
	return body, nil
}

func statusError(req *http.Request, code int) *StatusError {
	return &StatusError{Method: req.Method, URL: req.URL.Scheme + "://" + req.URL.Host + req.URL.Path, Code: code}
}
