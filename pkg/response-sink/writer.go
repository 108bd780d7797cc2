package sink

import "net/http"

// Writer is an http.ResponseWriter that writes to a Sink.
// Handlers written for net/http can produce a response into any Sink this way.
// The caller must call Close once the handler has returned.
type Writer struct {
	s            Sink
	header       http.Header
	wroteHeaders bool
	err          error
}

// NewResponseWriter returns a Writer writing to s.
func NewResponseWriter(s Sink) *Writer {
	return &Writer{
		s:      s,
		header: make(http.Header),
	}
}

// Implementation of http.ResponseWriter
func (w *Writer) Header() http.Header {
	return w.header
}

// Implementation of http.ResponseWriter
func (w *Writer) WriteHeader(statusCode int) {
	if w.wroteHeaders {
		return
	}
	w.wroteHeaders = true
	if err := w.s.SendHeaders(statusCode, w.header.Clone()); err != nil && w.err == nil {
		w.err = err
	}
}

// Implementation of http.ResponseWriter
func (w *Writer) Write(b []byte) (int, error) {
	if !w.wroteHeaders {
		w.WriteHeader(http.StatusOK)
	}
	if w.err != nil {
		return 0, w.err
	}
	if err := w.s.WriteChunk(b); err != nil {
		w.err = err
		return 0, err
	}
	return len(b), nil
}

// Close ends the response, sending headers first if the handler never wrote anything.
// It returns the first error seen while writing, or the error from ending the sink.
func (w *Writer) Close() error {
	if !w.wroteHeaders {
		w.WriteHeader(http.StatusOK)
	}
	if err := w.s.End(); err != nil {
		return err
	}
	return w.err
}
