package rfc2616

import "net/http"

// §  9.1.1 Safe Methods
// §
// §     In particular, the convention has been established that the GET and
// §     HEAD methods SHOULD NOT have the significance of taking an action
// §     other than retrieval. These methods ought to be considered "safe".

// CacheableMethod reports whether responses to the method are candidates for caching.
//
// §  9.3 GET
// §
// §     The response to a GET request is cacheable if and only if it meets
// §     the requirements for HTTP caching described in section 13.
//
// §  9.4 HEAD
// §
// §     The response to a HEAD request MAY be cacheable in the sense that the
// §     information contained in the response MAY be used to update a
// §     previously cached entity from that resource.
func CacheableMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// InvalidatingMethod reports whether a successful request with the method
// invalidates stored entities, see 13.10.
func InvalidatingMethod(method string) bool {
	switch method {
	case http.MethodPut, http.MethodDelete, http.MethodPost:
		return true
	}
	return false
}
