package rfc2616

import (
	"net/http"
	"strings"
)

// §  14.32 Pragma
// §
// §     The Pragma general-header field is used to include implementation-
// §     specific directives that might apply to any recipient along the
// §     request/response chain.
// §
// §         Pragma            = "Pragma" ":" 1#pragma-directive
// §         pragma-directive  = "no-cache" | extension-pragma
// §         extension-pragma  = token [ "=" ( token | quoted-string ) ]
// §
// §     When the no-cache directive is present in a request message, an
// §     application SHOULD forward the request toward the origin server even
// §     if it has a cached copy of what is being requested.

// PragmaNoCache reports whether a "Pragma: no-cache" directive is present.
func PragmaNoCache(header http.Header) bool {
	for _, directive := range GetListHeader(header, "Pragma") {
		if strings.EqualFold(directive, "no-cache") {
			return true
		}
	}
	return false
}
