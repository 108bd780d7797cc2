package httpcache

import (
	"net/http"

	sink "github.com/always-cache/httpcache/pkg/response-sink"
)

// Middleware returns a handler serving stored responses, and calling next
// and storing its responses otherwise.
// If the request evaluation fails, next is called without caching.
func (s *Storage) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, served, err := s.HandleRequest(r, sink.FromResponseWriter(w))
		if served {
			if err != nil {
				s.log.Warn().Err(err).Msg("Could not write stored response to client")
			}
			return
		}
		writer := sink.NewResponseWriter(out)
		next.ServeHTTP(writer, r)
		// the response is stored when it ends, so this must not run if next panics
		if err := writer.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Could not complete response")
		}
	})
}
