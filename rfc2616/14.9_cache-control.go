package rfc2616

import (
	"net/http"
	"strings"
	"time"
)

// §  14.9 Cache-Control
// §
// §     The Cache-Control general-header field is used to specify directives
// §     that MUST be obeyed by all caching mechanisms along the
// §     request/response chain. The directives specify behavior intended to
// §     prevent caches from adversely interfering with the request or
// §     response.
// §
// §      Cache-Control   = "Cache-Control" ":" 1#cache-directive
// §
// §      cache-directive = cache-request-directive
// §           | cache-response-directive
// §
// §      cache-extension = token [ "=" ( token | quoted-string ) ]

// CacheControl holds the parsed directives of one or more "Cache-Control" fields.
type CacheControl struct {
	directives map[string]string
}

// Get returns the value (/argument) of the specified directive,
// along with a boolean indicating whether this directive is present
func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[strings.ToLower(directive)]
	return val, ok
}

// HasDirective returns whether the specified directive is present
func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// Len returns the number of distinct directives.
func (c CacheControl) Len() int {
	return len(c.directives)
}

// GetCacheControl parses all "Cache-Control" fields of the header.
func GetCacheControl(header http.Header) CacheControl {
	return ParseCacheControl(header.Values("Cache-Control"))
}

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns an instance of `CacheControl`.
// Directives that cannot be parsed are left out, as if they were never sent.
// When a directive appears more than once, the first occurrence is used,
// except that a bare no-cache always wins over a qualified one.
func ParseCacheControl(headers []string) CacheControl {
	m := make(map[string]string)
	for _, header := range headers {
		for _, directive := range splitList(header) {
			token, rawArg, hasArg := strings.Cut(directive, "=")
			name := getCacheControlDirectiveName(token)
			if !isToken(name) {
				continue
			}
			var arg string
			if hasArg {
				var ok bool
				if arg, ok = getCacheControlDirectiveArgument(rawArg); !ok {
					continue
				}
			}
			if existing, seen := m[name]; seen {
				if name == "no-cache" && existing != "" && arg == "" {
					m[name] = ""
				}
				continue
			}
			m[name] = arg
		}
	}
	return CacheControl{m}
}

// getCacheControlDirectiveName returns a normalized name for the given directive.
func getCacheControlDirectiveName(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// getCacheControlDirectiveArgument returns the directive argument in token form,
// i.e. it converts the argument from "quoted-string" to "token" form if needed.
// The boolean is false if the argument is neither a token nor a quoted-string.
func getCacheControlDirectiveArgument(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, `"`) {
		if len(arg) < 2 || !strings.HasSuffix(arg, `"`) {
			return "", false
		}
		return unquote(arg[1 : len(arg)-1]), true
	}
	if !isToken(arg) {
		return "", false
	}
	return arg, true
}

// §  14.9.1 What is Cacheable
// §
// §     no-cache
// §        If the no-cache directive does not specify a field-name, then a
// §        cache MUST NOT use the response to satisfy a subsequent request
// §        without successful revalidation with the origin server. This
// §        allows an origin server to prevent caching even by caches that
// §        have been configured to return stale responses to client requests.
// §
// §        If the no-cache directive does specify one or more field-names,
// §        then a cache MAY use the response to satisfy a subsequent request,
// §        subject to any other restrictions on caching. However, the
// §        specified field-name(s) MUST NOT be sent in the response to a
// §        subsequent request without successful revalidation with the origin
// §        server.

// NoCacheUnqualified reports whether a no-cache directive without field-names is present.
func (c CacheControl) NoCacheUnqualified() bool {
	val, ok := c.Get("no-cache")
	return ok && val == ""
}

// NoCacheFields returns the field-names a qualified no-cache directive lists.
func (c CacheControl) NoCacheFields() []string {
	val, ok := c.Get("no-cache")
	if !ok || val == "" {
		return nil
	}
	fields := make([]string, 0)
	for _, field := range strings.Split(val, ",") {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// §  14.9.3 Modifications of the Basic Expiration Mechanism
// §
// §     max-age
// §        Indicates that the client is willing to accept a response whose
// §        age is no greater than the specified time in seconds. Unless max-
// §        stale directive is also included, the client is not willing to
// §        accept a stale response.

// MaxAge returns "max-age" as a duration, along with a boolean indicating
// whether the "max-age" directive was present with a usable value.
// Negative values are returned as they are.
func (c CacheControl) MaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds("max-age")
}

// SMaxAge is the shared-cache variant of MaxAge.
func (c CacheControl) SMaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds("s-maxage")
}

// getDeltaSeconds returns the "delta-seconds" as `time.Duration`,
// as well as a boolean indicating whether the directive was set.
//
// Examples:
// directive     -> 0,    false
// directive=abc -> 0,    false
// directive=0   -> 0,    true
// directive=60  -> 60s,  true
// directive=-60 -> -60s, true
func (c CacheControl) getDeltaSeconds(directive string) (time.Duration, bool) {
	if secondsStr, ok := c.Get(directive); ok && secondsStr != "" {
		return deltaSeconds(secondsStr)
	}
	return 0, false
}
