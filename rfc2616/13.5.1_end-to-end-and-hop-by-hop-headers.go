package rfc2616

import "net/http"

// §  13.5.1 End-to-end and Hop-by-hop Headers
// §
// §     For the purpose of defining the behavior of caches and non-caching
// §     proxies, we divide HTTP headers into two categories:
// §
// §        - End-to-end headers, which are  transmitted to the ultimate
// §          recipient of a request or response. End-to-end headers in
// §          responses MUST be stored as part of a cache entry and MUST be
// §          transmitted in any response formed from a cache entry.
// §
// §        - Hop-by-hop headers, which are meaningful only for a single
// §          transport-level connection, and are not stored by caches or
// §          forwarded by proxies.
// §
// §     The following HTTP/1.1 headers are hop-by-hop headers:
// §
// §        - Connection
// §        - Keep-Alive
// §        - Proxy-Authenticate
// §        - Proxy-Authorization
// §        - TE
// §        - Trailers
// §        - Transfer-Encoding
// §        - Upgrade
// §
// §     All other headers defined by HTTP/1.1 are end-to-end headers.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// StorableHeader returns a copy of the response header with everything removed
// that must not be part of a cache entry.
func StorableHeader(header http.Header) http.Header {
	if header == nil {
		return make(http.Header)
	}
	h := header.Clone()
	// §  14.10 Connection
	// §
	// §     HTTP/1.1 proxies MUST parse the Connection header field before a
	// §     message is forwarded and, for each connection-token in this field,
	// §     remove any header field(s) from the message with the same name as
	// §     the connection-token.
	for _, name := range GetListHeader(header, "Connection") {
		h.Del(name)
	}
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
	// §  14.9.1
	// §        If the no-cache directive does specify one or more field-names,
	// §        [...] the specified field-name(s) MUST NOT be sent in the response
	// §        to a subsequent request without successful revalidation with the
	// §        origin server.
	for _, name := range GetCacheControl(header).NoCacheFields() {
		h.Del(name)
	}
	return h
}
