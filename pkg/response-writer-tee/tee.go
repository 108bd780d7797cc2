package tee

import (
	"bytes"
	"context"
	"net/http"
	"sync/atomic"
	"time"

	sink "github.com/always-cache/httpcache/pkg/response-sink"
)

// ResponseSaver is a sink.Sink that saves the response to a buffer
// while writing it (tee'ing) to the underlying sink.
// When the response ends, the saved response is handed to the end callback
// unless the response was aborted on the way.
type ResponseSaver struct {
	s            sink.Sink
	ctx          context.Context
	b            *bytes.Buffer
	header       http.Header
	status       int
	wroteHeaders bool
	ended        bool
	limit        int64
	overflow     bool
	skipBody     bool
	aborted      atomic.Bool
	onEnd        func(*ResponseSaver) error
	CreatedAt    time.Time
}

// NewResponseSaver returns a new ResponseSaver writing to s.
// Once the saved body would exceed limit bytes it is dropped; a limit <= 0 means no limit.
// onEnd is called from End for responses that were not aborted. The context is the
// request context: if it is done when the response ends, the response counts as aborted.
func NewResponseSaver(ctx context.Context, s sink.Sink, limit int64, onEnd func(*ResponseSaver) error) *ResponseSaver {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ResponseSaver{
		CreatedAt: time.Now(),
		s:         s,
		ctx:       ctx,
		b:         &bytes.Buffer{},
		header:    http.Header{},
		limit:     limit,
		onEnd:     onEnd,
	}
}

// Implementation of sink.Sink
func (t *ResponseSaver) SendHeaders(statusCode int, header http.Header) error {
	if t.ended {
		return sink.ErrEnded
	}
	if t.wroteHeaders {
		return nil
	}
	// remember that we wrote the headers
	t.wroteHeaders = true
	// set the status code so we can return it later
	t.status = statusCode
	t.header = header.Clone()
	if t.header == nil {
		t.header = http.Header{}
	}
	return t.forward(t.s.SendHeaders(statusCode, header))
}

// Implementation of sink.Sink
func (t *ResponseSaver) WriteChunk(b []byte) error {
	if t.ended {
		return sink.ErrEnded
	}
	// write headers if not already written
	if !t.wroteHeaders {
		if err := t.SendHeaders(http.StatusOK, nil); err != nil {
			return err
		}
	}
	if !t.overflow && !t.skipBody {
		if t.limit > 0 && int64(t.b.Len()+len(b)) > t.limit {
			t.overflow = true
			t.b = &bytes.Buffer{}
		} else {
			t.b.Write(b)
		}
	}
	return t.forward(t.s.WriteChunk(b))
}

// Implementation of sink.Sink
// End may be called more than once; only the first call has an effect.
func (t *ResponseSaver) End() error {
	if t.ended {
		return nil
	}
	if !t.wroteHeaders {
		if err := t.SendHeaders(http.StatusOK, nil); err != nil {
			t.ended = true
			t.discard()
			return err
		}
	}
	t.ended = true
	err := t.forward(t.s.End())
	if t.ctx.Err() != nil {
		t.Abort()
	}
	if t.Aborted() {
		t.discard()
		return err
	}
	if t.onEnd != nil {
		return t.onEnd(t)
	}
	return nil
}

// SkipBody stops the saver from keeping body chunks; they are still forwarded.
// Responses to HEAD requests are saved this way.
func (t *ResponseSaver) SkipBody() {
	t.skipBody = true
	t.b = &bytes.Buffer{}
}

// Abort marks the response as aborted: it will not be handed on when it ends.
// It is safe to call from another goroutine.
func (t *ResponseSaver) Abort() {
	t.aborted.Store(true)
}

// Aborted reports whether the response was aborted, either explicitly
// or because the underlying sink failed.
func (t *ResponseSaver) Aborted() bool {
	return t.aborted.Load()
}

// Overflowed reports whether the body outgrew the limit.
func (t *ResponseSaver) Overflowed() bool {
	return t.overflow
}

// Body returns the saved body.
func (t *ResponseSaver) Body() []byte {
	return t.b.Bytes()
}

// Header returns the saved header.
func (t *ResponseSaver) Header() http.Header {
	return t.header
}

// StatusCode returns the status code of the response.
func (t *ResponseSaver) StatusCode() int {
	return t.status
}

// Updates returns the `Cache-Update` entries of the response.
func (t *ResponseSaver) Updates() []string {
	return t.header.Values("Cache-Update")
}

func (t *ResponseSaver) forward(err error) error {
	if err != nil {
		t.Abort()
	}
	return err
}

func (t *ResponseSaver) discard() {
	t.b = &bytes.Buffer{}
}
