// Package httpcache is an HTTP cache guard for request handlers.
//
// For every request it decides, following the caching rules of RFC 2616, whether
// the request may be answered from the cache and whether the response may be
// stored. Stored responses are kept by a capacity-bounded cache.Provider.
//
//	storage, err := httpcache.NewStorage(httpcache.Options{MemLimit: 1 << 20})
//	...
//	out, served, err := storage.HandleRequest(r, sink.FromResponseWriter(w))
//	if !served {
//		// produce the response by writing to out
//	}
//
// Storage.Middleware does the above for any http.Handler.
package httpcache

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/always-cache/httpcache/cache"
	"github.com/always-cache/httpcache/evaluation"
	cachekey "github.com/always-cache/httpcache/pkg/cache-key"
	"github.com/always-cache/httpcache/pkg/metrics"
	sink "github.com/always-cache/httpcache/pkg/response-sink"
	tee "github.com/always-cache/httpcache/pkg/response-writer-tee"
	"github.com/always-cache/httpcache/rfc2616"

	"github.com/rs/zerolog"
)

// Storage evaluates requests and responses and serves and stores responses
// through its provider. A Storage without a provider passes everything through.
type Storage struct {
	provider cache.Provider
	pipeline evaluation.Pipeline
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// New creates a Storage using provider, which may be nil.
// The provider settings of options are ignored.
func New(provider cache.Provider, options Options) *Storage {
	// create a child logger and add defaults
	logger := options.logger().With().
		Str("component", "httpcache").
		Logger()

	var stats func() cache.Stats
	if provider != nil {
		stats = provider.Stats
	}

	s := &Storage{
		provider: provider,
		log:      logger,
		metrics:  metrics.New(options.Registerer, stats),
	}
	options.Rules.Register(s, logger)
	return s
}

// Provider returns the provider of the storage.
func (s *Storage) Provider() cache.Provider {
	return s.provider
}

// Metrics returns the metrics of the storage.
func (s *Storage) Metrics() *metrics.Metrics {
	return s.metrics
}

// OnRequest registers a listener for the request event.
// Listeners run in registration order, before the built-in rules.
func (s *Storage) OnRequest(l evaluation.RequestListener) {
	s.pipeline.OnRequest(l)
}

// OnResponse registers a listener for the response event.
// Listeners run in registration order, before the built-in rules.
func (s *Storage) OnResponse(l evaluation.ResponseListener) {
	s.pipeline.OnResponse(l)
}

// EmitRequest evaluates c with the registered listeners and the built-in request rules.
func (s *Storage) EmitRequest(r *http.Request, w sink.Sink, c *evaluation.RequestContext) error {
	return s.pipeline.EmitRequest(r, w, c)
}

// EmitResponse evaluates c with the registered listeners and the built-in response rules.
func (s *Storage) EmitResponse(r *http.Request, w sink.Sink, c *evaluation.ResponseContext) error {
	return s.pipeline.EmitResponse(r, w, c)
}

// HandleRequest handles the cache side of a request.
// If the boolean is true, the response has been served from the cache and the
// caller is done. Otherwise the caller must produce the response by writing to
// the returned sink, which stores the response once it ends, if it may be stored.
//
// A non-nil error with a false boolean means the request event failed; the
// returned sink is then w itself and nothing will be stored.
func (s *Storage) HandleRequest(r *http.Request, w sink.Sink) (sink.Sink, bool, error) {
	cs := CacheStatus{}
	logger := s.log.With().Str("method", r.Method).Str("url", r.URL.String()).Logger()

	rc := evaluation.NewRequestContext(r)
	if err := s.EmitRequest(r, w, rc); err != nil {
		cs.Forward(CacheStatusFwdError)
		s.metrics.ObserveListenerFailure(evaluation.EventRequest)
		s.metrics.ObserveRequest(cs.String())
		logger.Warn().Err(err).Msg("Request evaluation failed")
		return w, false, err
	}
	logger.Trace().
		Bool("storable", rc.Storable()).
		Bool("retrievable", rc.Retrievable()).
		Msg("Evaluated request")

	switch {
	case s.provider == nil:
		cs.Forward(CacheStatusFwdBypass)
	case !rc.Retrievable():
		cs.Forward(CacheStatusFwdRequest)
	default:
		served, err := s.serveCached(r, w, &cs, logger)
		if served {
			s.metrics.ObserveRequest(cs.String())
			s.logRequest(logger, cs)
			return w, true, err
		}
	}
	return s.prepareWrappers(r, w, rc, cs, logger), false, nil
}

// ServeCached writes the stored response for r to w, if there is one.
// It reports whether a response was written; write errors are returned along with true.
// Provider failures are logged and reported as a miss.
func (s *Storage) ServeCached(r *http.Request, w sink.Sink) (bool, error) {
	cs := CacheStatus{}
	return s.serveCached(r, w, &cs, s.log)
}

func (s *Storage) serveCached(r *http.Request, w sink.Sink, cs *CacheStatus, logger zerolog.Logger) (bool, error) {
	if s.provider == nil {
		cs.Forward(CacheStatusFwdBypass)
		return false, nil
	}
	key := cachekey.FromRequest(r)
	logger.Trace().Str("key", key.String()).Msg("Getting cached entry")
	entry, ok, err := s.provider.Lookup(key)
	if err != nil {
		logger.Error().Err(err).Str("key", key.String()).Msg("Could not retrieve from cache")
		cs.Forward(CacheStatusFwdError)
		return false, nil
	}
	if !ok {
		cs.Forward(CacheStatusFwdUriMiss)
		return false, nil
	}
	cs.Hit()
	return true, sendStoredResponse(w, entry)
}

func sendStoredResponse(w sink.Sink, entry cache.Entry) error {
	if err := w.SendHeaders(entry.StatusCode, entry.Header.Clone()); err != nil {
		return err
	}
	if len(entry.Body) > 0 {
		if err := w.WriteChunk(entry.Body); err != nil {
			return err
		}
	}
	return w.End()
}

// PrepareWrappers returns a sink that writes to w and stores the response when it ends.
// The response is stored only if the response event evaluates it as storable and,
// when c is not nil, the request was evaluated as storable.
// Without a provider, w is returned as is.
func (s *Storage) PrepareWrappers(r *http.Request, w sink.Sink, c *evaluation.RequestContext) sink.Sink {
	cs := CacheStatus{}
	cs.Forward(CacheStatusFwdUriMiss)
	return s.prepareWrappers(r, w, c, cs, s.log)
}

func (s *Storage) prepareWrappers(r *http.Request, w sink.Sink, rc *evaluation.RequestContext, cs CacheStatus, logger zerolog.Logger) sink.Sink {
	if s.provider == nil {
		s.metrics.ObserveRequest(cs.String())
		s.logRequest(logger, cs)
		return w
	}
	key := cachekey.FromRequest(r)
	saver := tee.NewResponseSaver(r.Context(), w, s.provider.Limit(), func(saved *tee.ResponseSaver) error {
		defer func() {
			s.metrics.ObserveRequest(cs.String())
			s.logRequest(logger.With().Int("statusCode", saved.StatusCode()).Logger(), cs)
		}()
		s.invalidate(r, saved.StatusCode(), saved.Header(), logger)

		resc := evaluation.NewResponseContext(w, saved.StatusCode(), saved.Header().Clone())
		if err := s.EmitResponse(r, w, resc); err != nil {
			s.metrics.ObserveListenerFailure(evaluation.EventResponse)
			logger.Warn().Err(err).Msg("Response evaluation failed")
			return err
		}
		logger.Trace().Bool("storable", resc.Storable()).Msg("Evaluated response")

		result, err := s.commit(key, rc, resc, saved)
		s.metrics.ObserveCommit(result)
		cs.Stored = result == metrics.CommitStored
		if err != nil {
			logger.Error().Err(err).Str("key", key.String()).Msg("Could not store response")
			return err
		}
		return nil
	})
	if r.Method == http.MethodHead {
		saver.SkipBody()
	}
	return saver
}

// commit stores the saved response if both evaluations allow it.
func (s *Storage) commit(key cachekey.Key, rc *evaluation.RequestContext, resc *evaluation.ResponseContext, saved *tee.ResponseSaver) (string, error) {
	if rc != nil && !rc.Storable() || !resc.Storable() {
		return metrics.CommitSkipped, nil
	}
	if saved.Overflowed() {
		return metrics.CommitOverflow, nil
	}
	entry := cache.NewEntry(
		key,
		resc.StatusCode,
		rfc2616.StorableHeader(resc.Header),
		bytes.Clone(saved.Body()),
	)
	ok, err := s.provider.Insert(entry)
	if err != nil {
		return metrics.CommitError, fmt.Errorf("store %s: %w", key, err)
	}
	if !ok {
		return metrics.CommitRejected, nil
	}
	return metrics.CommitStored, nil
}

func (s *Storage) logRequest(logger zerolog.Logger, cs CacheStatus) {
	logger.Debug().
		Str("status", cs.Status).
		Str("fwd", cs.FwdReason).
		Bool("stored", cs.Stored).
		Msg("Sending response to client")
}
