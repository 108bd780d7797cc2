package cachekey

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrMalformedKey = errors.New("malformed cache key")

const methodSeparator = ":"

// Key identifies a stored response.
// Two requests map to the same entry exactly when their keys are equal.
type Key struct {
	Method string
	// Lower-cased host followed by the request URI (path and query).
	URI string
}

// FromRequest returns the key for the request.
// The host is taken from the request URL, or from the Host header if the URL has none.
func FromRequest(r *http.Request) Key {
	host := r.URL.Host
	if host == "" {
		host = r.Host
	}
	return Key{
		Method: r.Method,
		URI:    strings.ToLower(host) + r.URL.RequestURI(),
	}
}

// ForURL returns the key for a request with the given method to u.
func ForURL(method string, u *url.URL) Key {
	return Key{
		Method: method,
		URI:    strings.ToLower(u.Host) + u.RequestURI(),
	}
}

// String returns the storage form of the key, e.g. `GET:example.com/page?id=1`.
func (k Key) String() string {
	return k.Method + methodSeparator + k.URI
}

// Parse is the inverse of String.
func Parse(s string) (Key, error) {
	method, uri, found := strings.Cut(s, methodSeparator)
	if !found || method == "" || !strings.Contains(uri, "/") && uri != "*" {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return Key{Method: method, URI: uri}, nil
}

// Request generates a request that results in the key.
// The request has no scheme, since the key does not carry one.
func (k Key) Request() (*http.Request, error) {
	host, uri := k.URI, "/"
	if i := strings.Index(k.URI, "/"); i >= 0 {
		host, uri = k.URI[:i], k.URI[i:]
	}
	req, err := http.NewRequest(k.Method, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Host = host
	return req, nil
}
