package cache

import (
	"errors"
	"net/http"
	"time"

	cachekey "github.com/always-cache/httpcache/pkg/cache-key"
	serializer "github.com/always-cache/httpcache/pkg/response-serializer"
)

// ErrInvalidMemLimit is returned when a provider is created with a non-positive byte budget.
var ErrInvalidMemLimit = errors.New("memLimit must be positive")

// Provider is a capacity-bounded store of responses.
// The sum of the sizes of all stored entries never exceeds Limit.
// When an insertion would exceed it, least recently used entries are evicted first.
//
// Implementations must be thread-safe!
type Provider interface {
	// Lookup returns the entry stored for key, and marks it as most recently used.
	// The boolean is false if there is no such entry.
	Lookup(key cachekey.Key) (Entry, bool, error)
	// Insert stores the entry, replacing any entry with the same key.
	// It returns false without an error if the entry is larger than the limit.
	Insert(entry Entry) (bool, error)
	// Evict removes the entry for key, if any.
	Evict(key cachekey.Key) error
	// Limit returns the byte budget.
	Limit() int64
	// Stats returns the current usage.
	Stats() Stats
}

// Entry is a stored response.
type Entry struct {
	Key        cachekey.Key
	StatusCode int
	Header     http.Header
	Body       []byte
	// Size of the header block in wire format plus the length of the body.
	SizeBytes int64
	StoredAt  time.Time
}

// NewEntry creates an entry stored now.
func NewEntry(key cachekey.Key, statusCode int, header http.Header, body []byte) Entry {
	if header == nil {
		header = make(http.Header)
	}
	return Entry{
		Key:        key,
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		SizeBytes:  Size(header, body),
		StoredAt:   time.Now(),
	}
}

// Size returns the number of bytes an entry with the given header and body accounts for.
func Size(header http.Header, body []byte) int64 {
	return serializer.HeaderSize(header) + int64(len(body))
}

// Stats describes the usage of a provider.
type Stats struct {
	Entries   int
	Bytes     int64
	Evictions uint64
}
