// Package steamtest provides a scripted netutil.Transport for protocol tests.
package steamtest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

type Request struct {
	Method string
	URL    string
	Values url.Values
}

type Handler func(req Request) ([]byte, error)

type route struct {
	method  string
	prefix  string
	handler Handler
}

// Transport routes requests to handlers by method and the longest matching
// url prefix, later registrations winning ties, and records every request.
type Transport struct {
	mu       sync.Mutex
	routes   []route
	requests []Request
	cookies  map[string][]*http.Cookie
}

func NewTransport() *Transport {
	return &Transport{cookies: make(map[string][]*http.Cookie)}
}

func (t *Transport) Handle(method, prefix string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route{method: method, prefix: prefix, handler: h})
}

// Respond registers a handler that always returns body.
func (t *Transport) Respond(method, prefix, body string) {
	t.Handle(method, prefix, func(Request) ([]byte, error) {
		return []byte(body), nil
	})
}

// Sequence registers a handler returning bodies in order, repeating the last one.
func (t *Transport) Sequence(method, prefix string, bodies ...string) {
	var (
		mu sync.Mutex
		i  int
	)
	t.Handle(method, prefix, func(Request) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		body := bodies[i]
		if i < len(bodies)-1 {
			i++
		}
		return []byte(body), nil
	})
}

func (t *Transport) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return t.dispatch(ctx, Request{Method: http.MethodGet, URL: rawURL, Values: params})
}

func (t *Transport) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	return t.dispatch(ctx, Request{Method: http.MethodPost, URL: rawURL, Values: form})
}

func (t *Transport) Cookies(domain string) []*http.Cookie {
	t.mu.Lock()
	defer t.mu.Unlock()
	cookies := make([]*http.Cookie, 0, len(t.cookies[domain]))
	for _, c := range t.cookies[domain] {
		clone := *c
		cookies = append(cookies, &clone)
	}
	return cookies
}

func (t *Transport) SetCookies(domain string, cookies []*http.Cookie) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range cookies {
		kept := t.cookies[domain][:0]
		for _, existing := range t.cookies[domain] {
			if existing.Name != c.Name {
				kept = append(kept, existing)
			}
		}
		t.cookies[domain] = kept
		// A negative MaxAge deletes the cookie, as a cookie jar does.
		if c.MaxAge < 0 {
			continue
		}
		clone := *c
		t.cookies[domain] = append(t.cookies[domain], &clone)
	}
}

// Cookie returns the value of a named cookie on domain, or "".
func (t *Transport) Cookie(domain, name string) string {
	for _, c := range t.Cookies(domain) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.requests...)
}

// Count returns how many recorded requests match method and url prefix.
func (t *Transport) Count(method, prefix string) int {
	n := 0
	for _, req := range t.Requests() {
		if req.Method == method && strings.HasPrefix(req.URL, prefix) {
			n++
		}
	}
	return n
}

func (t *Transport) dispatch(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.requests = append(t.requests, req)
	var best *route
	for i := range t.routes {
		r := &t.routes[i]
		if r.method != req.Method || !strings.HasPrefix(req.URL, r.prefix) {
			continue
		}
		if best == nil || len(r.prefix) >= len(best.prefix) {
			best = r
		}
	}
	t.mu.Unlock()

	if best == nil {
		return nil, fmt.Errorf("steamtest: no route for %s %s", req.Method, req.URL)
	}
	return best.handler(req)
}
