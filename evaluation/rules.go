package evaluation

import (
	"net/http"

	"github.com/always-cache/httpcache/rfc2616"
)

// RequestRule is one step of the built-in request evaluation.
type RequestRule func(*RequestContext)

// ResponseRule is one step of the built-in response evaluation.
type ResponseRule func(*ResponseContext)

// RequestDefaults returns the built-in request rules in the order they are applied.
// Every rule only writes flags that are still unset.
func RequestDefaults() []RequestRule {
	return []RequestRule{
		restrictByRequestDirectives,
		limitRequestFreshness,
		decideByMethod,
	}
}

// ResponseDefaults returns the built-in response rules in the order they are applied.
func ResponseDefaults() []ResponseRule {
	return []ResponseRule{
		restrictByStatus,
		decideByResponseDirectives,
		allowWithValidator,
	}
}

// ApplyRequestDefaults runs the built-in request rules on c.
func ApplyRequestDefaults(c *RequestContext) {
	for _, rule := range RequestDefaults() {
		rule(c)
	}
}

// ApplyResponseDefaults runs the built-in response rules on c.
func ApplyResponseDefaults(c *ResponseContext) {
	for _, rule := range ResponseDefaults() {
		rule(c)
	}
}

func restrictByRequestDirectives(c *RequestContext) {
	header := requestHeader(c.Request)
	cc := rfc2616.GetCacheControl(header)
	if cc.HasDirective("no-store") || cc.HasDirective("no-cache") || rfc2616.PragmaNoCache(header) {
		c.FlagStorable(false)
		c.FlagRetrievable(false)
	}
}

func limitRequestFreshness(c *RequestContext) {
	if maxAge, ok := rfc2616.GetCacheControl(requestHeader(c.Request)).MaxAge(); ok && maxAge <= 0 {
		c.FlagRetrievable(false)
	}
}

func decideByMethod(c *RequestContext) {
	cacheable := c.Request != nil && rfc2616.CacheableMethod(c.Request.Method)
	c.FlagStorable(cacheable)
	c.FlagRetrievable(cacheable)
}

func restrictByStatus(c *ResponseContext) {
	if !rfc2616.StatusCacheCandidate(c.StatusCode) {
		c.FlagStorable(false)
	}
}

func decideByResponseDirectives(c *ResponseContext) {
	cc := rfc2616.GetCacheControl(c.Header)
	if cc.ForbidsStorage() {
		c.FlagStorable(false)
	}
	if maxAge, ok := cc.MaxAge(); ok {
		c.FlagStorable(maxAge > 0)
	}
}

func allowWithValidator(c *ResponseContext) {
	if rfc2616.HasValidator(c.Header) {
		c.FlagStorable(true)
	}
}

func requestHeader(r *http.Request) http.Header {
	if r == nil || r.Header == nil {
		return http.Header{}
	}
	return r.Header
}
