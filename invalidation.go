package httpcache

import (
	"net/http"
	"net/url"
	"time"

	cachekey "github.com/always-cache/httpcache/pkg/cache-key"
	cacheupdate "github.com/always-cache/httpcache/pkg/cache-update"
	"github.com/always-cache/httpcache/rfc2616"

	"github.com/rs/zerolog"
)

// invalidate evicts the entries an unsafe request may have changed:
// the request URI, same-host Location and Content-Location URIs,
// and the URIs listed in `Cache-Update` headers.
func (s *Storage) invalidate(r *http.Request, statusCode int, header http.Header, logger zerolog.Logger) {
	uris := rfc2616.InvalidateURIs(r, statusCode, header)
	if len(uris) == 0 {
		return
	}
	s.invalidateUris(uris, logger)
	s.saveUpdates(cacheupdate.GetCacheUpdates(r, header), logger)
}

func (s *Storage) invalidateUris(uris []*url.URL, logger zerolog.Logger) {
	for _, uri := range uris {
		logger.Trace().Str("uri", uri.String()).Msg("Invalidating stored response")
		for _, method := range []string{http.MethodGet, http.MethodHead} {
			key := cachekey.ForURL(method, uri)
			if err := s.provider.Evict(key); err != nil {
				logger.Error().Err(err).Str("key", key.String()).Msg("Could not invalidate stored response")
			}
		}
	}
	s.metrics.ObserveInvalidations(len(uris))
}

func (s *Storage) saveUpdates(updates []cacheupdate.CacheUpdate, logger zerolog.Logger) {
	for _, update := range updates {
		uris := []*url.URL{update.URL}
		logger.Trace().Str("update", update.URL.String()).Msg("Updating cache based on header")
		if update.Delay > 0 {
			time.AfterFunc(update.Delay, func() {
				s.invalidateUris(uris, logger)
			})
		} else {
			s.invalidateUris(uris, logger)
		}
	}
}
