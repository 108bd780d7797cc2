package httpcache

const (
	CacheStatusHit = "hit"
	CacheStatusFwd = "fwd"
)

const (
	// The Storage has no provider.
	CacheStatusFwdBypass = "bypass"

	// The request's semantics (method or Cache-Control request
	// directives) did not allow a stored response to be used.
	CacheStatusFwdRequest = "request"

	// The cache did not contain any response that matched the
	// request URI.
	CacheStatusFwdUriMiss = "uri-miss"

	// Evaluating the request failed, or the stored response could
	// not be read.
	CacheStatusFwdError = "error"
)

// CacheStatus records how the cache handled a request.
// It is only used for logging and metrics, never sent to clients.
type CacheStatus struct {
	Status    string
	FwdReason string
	Stored    bool
}

func (cs *CacheStatus) Hit() {
	cs.Status = CacheStatusHit
	cs.FwdReason = ""
}

func (cs *CacheStatus) Forward(reason string) {
	cs.Status = CacheStatusFwd
	cs.FwdReason = reason
}

// String returns e.g. "hit" or "fwd=uri-miss".
func (cs CacheStatus) String() string {
	if cs.Status == CacheStatusFwd && cs.FwdReason != "" {
		return cs.Status + "=" + cs.FwdReason
	}
	return cs.Status
}
