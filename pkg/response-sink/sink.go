// Package sink defines the minimal response capability the cache writes to,
// along with adapters to and from net/http.
package sink

import (
	"bytes"
	"errors"
	"net/http"
)

// ErrEnded is returned when a sink is written to after End.
var ErrEnded = errors.New("response already ended")

// Sink is the write side of a single HTTP response.
// SendHeaders is called at most once, before any chunk.
// End is called exactly once when the response is complete.
type Sink interface {
	SendHeaders(statusCode int, header http.Header) error
	WriteChunk(b []byte) error
	End() error
}

// responseWriterSink writes to a net/http ResponseWriter.
type responseWriterSink struct {
	w           http.ResponseWriter
	sentHeaders bool
	ended       bool
}

// FromResponseWriter returns a Sink writing to w.
// End flushes w if it supports flushing; the response itself is completed
// by net/http when the handler returns.
func FromResponseWriter(w http.ResponseWriter) Sink {
	return &responseWriterSink{w: w}
}

func (s *responseWriterSink) SendHeaders(statusCode int, header http.Header) error {
	if s.ended {
		return ErrEnded
	}
	if s.sentHeaders {
		return nil
	}
	s.sentHeaders = true
	dst := s.w.Header()
	for name, values := range header {
		dst[name] = append([]string(nil), values...)
	}
	s.w.WriteHeader(statusCode)
	return nil
}

func (s *responseWriterSink) WriteChunk(b []byte) error {
	if s.ended {
		return ErrEnded
	}
	if !s.sentHeaders {
		if err := s.SendHeaders(http.StatusOK, nil); err != nil {
			return err
		}
	}
	_, err := s.w.Write(b)
	return err
}

func (s *responseWriterSink) End() error {
	if s.ended {
		return nil
	}
	if !s.sentHeaders {
		if err := s.SendHeaders(http.StatusOK, nil); err != nil {
			return err
		}
	}
	s.ended = true
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Recorder is a Sink that keeps everything written to it.
// It is useful for requests that are made on behalf of nobody in particular.
type Recorder struct {
	StatusCode int
	Header     http.Header
	Body       bytes.Buffer
	Ended      bool
	// Err, if set, is returned from every call.
	Err error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Header: make(http.Header)}
}

func (r *Recorder) SendHeaders(statusCode int, header http.Header) error {
	if r.Err != nil {
		return r.Err
	}
	r.StatusCode = statusCode
	r.Header = header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return nil
}

func (r *Recorder) WriteChunk(b []byte) error {
	if r.Err != nil {
		return r.Err
	}
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	r.Body.Write(b)
	return nil
}

func (r *Recorder) End() error {
	if r.Err != nil {
		return r.Err
	}
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	r.Ended = true
	return nil
}
