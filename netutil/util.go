package netutil

import (
	"net/http"
	"net/url"
	"strings"
)

func ToUrlValues(m map[string]string) url.Values {
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v)
	}
	return values
}

// NewPostForm builds a urlencoded POST request. It panics on a malformed url,
// callers only pass package constants.
func NewPostForm(rawURL string, values url.Values) *http.Request {
	req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(values.Encode()))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	return req
}

func domainURL(domain string) *url.URL {
	return &url.URL{Scheme: "https", Host: domain, Path: "/"}
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
