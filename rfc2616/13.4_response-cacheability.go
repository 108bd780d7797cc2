package rfc2616

import "net/http"

// §  13.4 Response Cacheability
// §
// §     Unless specifically constrained by a cache-control (section 14.9)
// §     directive, a caching system MAY always store a successful response
// §     (see section 13.8) as a cache entry, MAY return it without validation
// §     if it is fresh, and MAY return it after successful validation.
// §
// §     A response received with a status code of 200, 203, 206, 300, 301 or
// §     410 MAY be stored by a cache and used in reply to a subsequent
// §     request, subject to the expiration mechanism, unless a cache-control
// §     directive prohibits caching. However, a cache that does not support
// §     the Range and Content-Range headers MUST NOT cache 206 (Partial
// §     Content) responses.
//
// 410 is left out so that a gone resource is never pinned in the cache.
var cacheCandidates = map[int]bool{
	http.StatusOK:                   true,
	http.StatusNonAuthoritativeInfo: true,
	http.StatusPartialContent:       true,
	http.StatusMultipleChoices:      true,
	http.StatusMovedPermanently:     true,
}

// StatusCacheCandidate reports whether a response with the status code may be
// stored at all. A candidate still needs a positive signal to be stored.
func StatusCacheCandidate(statusCode int) bool {
	return cacheCandidates[statusCode]
}

// ForbidsStorage reports whether the response directives prohibit storage of
// the whole response, i.e. private, no-store or an unqualified no-cache.
//
// §  14.9.1 What is Cacheable
// §
// §     private
// §        Indicates that all or part of the response message is intended for
// §        a single user and MUST NOT be cached by a shared cache.
// §
// §  14.9.2 What May be Stored by Caches
// §
// §     no-store
// §        The purpose of the no-store directive is to prevent the
// §        inadvertent release or retention of sensitive information
func (c CacheControl) ForbidsStorage() bool {
	return c.HasDirective("private") || c.HasDirective("no-store") || c.NoCacheUnqualified()
}
