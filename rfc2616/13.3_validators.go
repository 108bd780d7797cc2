package rfc2616

import "net/http"

// §  13.3.2 Entity Tag Cache Validators
// §
// §     The ETag response-header field value, an entity tag, provides for an
// §     "opaque" cache validator.
// §
// §  13.3.1 Last-Modified Dates
// §
// §     The Last-Modified entity-header field value is often used as a cache
// §     validator.

// HasValidator reports whether the header carries an ETag or a Last-Modified field.
func HasValidator(header http.Header) bool {
	return len(header.Values("ETag")) > 0 || len(header.Values("Last-Modified")) > 0
}
