package evaluation

import (
	"net/http"

	sink "github.com/always-cache/httpcache/pkg/response-sink"
)

// RequestContext decides whether a request may be stored and answered from the cache.
// It lives for exactly one request/response cycle.
type RequestContext struct {
	Request *http.Request
	flags   Flags
}

// NewRequestContext creates the evaluation context for r, with both flags unset.
func NewRequestContext(r *http.Request) *RequestContext {
	return &RequestContext{Request: r}
}

// FlagStorable sets storable unless it has been decided already.
func (c *RequestContext) FlagStorable(value bool) {
	c.flags.SetIfUnset(Storable, value)
}

// FlagRetrievable sets retrievable unless it has been decided already.
func (c *RequestContext) FlagRetrievable(value bool) {
	c.flags.SetIfUnset(Retrievable, value)
}

// Storable reports whether the response to the request may be stored.
func (c *RequestContext) Storable() bool {
	return c.flags.Read(Storable).Bool()
}

// Retrievable reports whether the request may be answered from the cache.
func (c *RequestContext) Retrievable() bool {
	return c.flags.Read(Retrievable).Bool()
}

// Flags returns a copy of the current flag states.
func (c *RequestContext) Flags() Flags {
	return c.flags
}

// ResponseContext decides whether a response may be stored.
// Responses have no retrievable flag.
type ResponseContext struct {
	Sink       sink.Sink
	StatusCode int
	Header     http.Header
	flags      Flags
}

// NewResponseContext creates the evaluation context for a response written to s.
func NewResponseContext(s sink.Sink, statusCode int, header http.Header) *ResponseContext {
	if header == nil {
		header = make(http.Header)
	}
	return &ResponseContext{
		Sink:       s,
		StatusCode: statusCode,
		Header:     header,
	}
}

// FlagStorable sets storable unless it has been decided already.
func (c *ResponseContext) FlagStorable(value bool) {
	c.flags.SetIfUnset(Storable, value)
}

// Storable reports whether the response may be stored.
func (c *ResponseContext) Storable() bool {
	return c.flags.Read(Storable).Bool()
}

// Flags returns a copy of the current flag states.
func (c *ResponseContext) Flags() Flags {
	return c.flags
}
