// Package evaluation decides per request/response cycle whether a response may be
// stored in the cache and whether a request may be answered from it.
//
// Decisions are made by listeners registered on a Pipeline, followed by the
// built-in rules. Since a flag can only be written once, listeners always take
// priority over the built-in rules.
package evaluation

import (
	"fmt"
	"net/http"
	"sync"

	sink "github.com/always-cache/httpcache/pkg/response-sink"
)

const (
	EventRequest  = "request"
	EventResponse = "response"
)

// RequestListener is called for every request before the built-in request rules.
type RequestListener func(r *http.Request, s sink.Sink, c *RequestContext) error

// ResponseListener is called for every completed response before the built-in response rules.
type ResponseListener func(r *http.Request, s sink.Sink, c *ResponseContext) error

// ListenerError is returned from a dispatch that was aborted by a failing listener.
type ListenerError struct {
	Event string
	// Position of the listener in registration order.
	Index int
	Err   error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("%s listener %d: %v", e.Event, e.Index, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// Pipeline dispatches the request and response events.
// The zero value is ready to use and safe for concurrent use.
type Pipeline struct {
	mu                sync.RWMutex
	requestListeners  []RequestListener
	responseListeners []ResponseListener
}

// OnRequest registers a listener for the request event.
func (p *Pipeline) OnRequest(l RequestListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestListeners = append(p.requestListeners, l)
}

// OnResponse registers a listener for the response event.
func (p *Pipeline) OnResponse(l ResponseListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responseListeners = append(p.responseListeners, l)
}

// EmitRequest runs the request listeners in registration order and then the built-in request rules.
// If a listener fails, the rest of the dispatch is skipped and c keeps whatever flags were set.
func (p *Pipeline) EmitRequest(r *http.Request, s sink.Sink, c *RequestContext) error {
	p.mu.RLock()
	listeners := p.requestListeners
	p.mu.RUnlock()

	for i, l := range listeners {
		if err := l(r, s, c); err != nil {
			return &ListenerError{Event: EventRequest, Index: i, Err: err}
		}
	}
	ApplyRequestDefaults(c)
	return nil
}

// EmitResponse runs the response listeners in registration order and then the built-in response rules.
func (p *Pipeline) EmitResponse(r *http.Request, s sink.Sink, c *ResponseContext) error {
	p.mu.RLock()
	listeners := p.responseListeners
	p.mu.RUnlock()

	for i, l := range listeners {
		if err := l(r, s, c); err != nil {
			return &ListenerError{Event: EventResponse, Index: i, Err: err}
		}
	}
	ApplyResponseDefaults(c)
	return nil
}
