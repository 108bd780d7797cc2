// Package cacheupdate reads the `Cache-Update` response header extension.
// A response to an unsafe request may list further resources that changed
// along with the target, e.g. `Cache-Update: /list; delay=5`.
package cacheupdate

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/always-cache/httpcache/rfc2616"
)

var errForeignHost = errors.New("update on another host")

var delayDirective = regexp.MustCompile(`(?i)\bdelay=(\d+)`)

// CacheUpdate represents a single `Cache-Update` entry.
type CacheUpdate struct {
	// Fully resolved URL of the resource.
	URL *url.URL
	// Update delay, i.e. delay update by this duration.
	Delay time.Duration
}

// GetCacheUpdates gets the updates specified by the response header.
// The request is used in order to resolve potentially relative update paths.
// Only responses to unsafe requests carry updates.
func GetCacheUpdates(req *http.Request, header http.Header) []CacheUpdate {
	if !rfc2616.InvalidatingMethod(req.Method) {
		return nil
	}
	updates := make([]CacheUpdate, 0)
	for _, update := range header.Values("Cache-Update") {
		u, err := getURL(req, update)
		if err != nil {
			continue
		}
		updates = append(updates, CacheUpdate{
			URL:   u,
			Delay: getDelay(update),
		})
	}
	return updates
}

// getURL returns the URL to update the cache for from the `Cache-Update` header parameter.
// The URL is the first parameter in the header value (separated by a semicolon).
// URLs on other hosts than the request are refused.
func getURL(r *http.Request, update string) (*url.URL, error) {
	possiblyRelativeURL := strings.TrimSpace(strings.Split(update, ";")[0])
	ref, err := url.Parse(possiblyRelativeURL)
	if err != nil {
		return nil, err
	}
	base := *r.URL
	if base.Host == "" {
		base.Host = r.Host
	}
	u := base.ResolveReference(ref)
	if !strings.EqualFold(u.Host, base.Host) {
		return nil, errForeignHost
	}
	return u, nil
}

// getDelay returns the delay to wait before updating the cache for from the `Cache-Update` header parameter.
// The delay directive syntax is `delay=N`, where N is the number of seconds to wait.
// Directives are separated by a semicolon.
// If no delay directive is found, it returns 0. Delays too long for a time.Duration are clamped.
func getDelay(update string) time.Duration {
	matches := delayDirective.FindStringSubmatch(update)
	if matches == nil {
		return 0
	}
	const maxSeconds = int64(math.MaxInt64) / int64(time.Second)
	delay, err := strconv.ParseInt(matches[1], 10, 64)
	if errors.Is(err, strconv.ErrRange) || delay > maxSeconds {
		delay = maxSeconds
	} else if err != nil {
		return 0
	}
	return time.Duration(delay) * time.Second
}
