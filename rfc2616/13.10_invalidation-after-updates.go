package rfc2616

import (
	"net/http"
	"net/url"
	"strings"
)

// §  13.10 Invalidation After Updates or Deletions
// §
// §     Some HTTP methods MUST cause a cache to invalidate an entity. This is
// §     either the entity referred to by the Request-URI, or by the Location
// §     or Content-Location headers (if present). These methods are:
// §
// §        - PUT
// §        - DELETE
// §        - POST
// §
// §     In order to prevent denial of service attacks, an invalidation based
// §     on the URI in a Location or Content-Location header MUST only be
// §     performed if the host part is the same as in the Request-URI.

// InvalidateURIs returns the URIs whose stored entities must be dropped after
// the request completed with the given response status and header.
// Only 2xx and 3xx responses invalidate anything.
// The returned URLs are absolute when the request URL is.
func InvalidateURIs(req *http.Request, statusCode int, header http.Header) []*url.URL {
	if !InvalidatingMethod(req.Method) || statusCode < 200 || statusCode >= 400 {
		return nil
	}
	uris := []*url.URL{requestURL(req)}
	for _, field := range []string{"Location", "Content-Location"} {
		value := header.Get(field)
		if value == "" {
			continue
		}
		ref, err := url.Parse(value)
		if err != nil {
			continue
		}
		target := uris[0].ResolveReference(ref)
		if !strings.EqualFold(target.Host, uris[0].Host) {
			continue
		}
		uris = append(uris, target)
	}
	return uris
}

// requestURL returns the effective request URL, taking the host from the
// Host header when the request line did not carry one.
func requestURL(req *http.Request) *url.URL {
	u := *req.URL
	if u.Host == "" {
		u.Host = req.Host
	}
	return &u
}
