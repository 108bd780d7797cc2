package cache

import (
	"container/list"
	"sync"

	cachekey "github.com/always-cache/httpcache/pkg/cache-key"

	"github.com/rs/zerolog"
)

// MemoryStorage keeps entries in memory.
type MemoryStorage struct {
	mu        sync.Mutex
	memLimit  int64
	total     int64
	evictions uint64
	// most recently used at the front
	lru     *list.List
	entries map[cachekey.Key]*list.Element
	log     zerolog.Logger
}

// NewMemoryStorage creates a MemoryStorage holding at most memLimit bytes
// (header block in wire format plus body, per entry).
func NewMemoryStorage(memLimit int64, logger zerolog.Logger) (*MemoryStorage, error) {
	if memLimit <= 0 {
		return nil, ErrInvalidMemLimit
	}
	return &MemoryStorage{
		memLimit: memLimit,
		lru:      list.New(),
		entries:  make(map[cachekey.Key]*list.Element),
		log:      logger,
	}, nil
}

func (m *MemoryStorage) Lookup(key cachekey.Key) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	m.lru.MoveToFront(el)
	entry := el.Value.(Entry)
	entry.Header = entry.Header.Clone()
	return entry, true, nil
}

func (m *MemoryStorage) Insert(entry Entry) (bool, error) {
	entry.SizeBytes = Size(entry.Header, entry.Body)
	if entry.SizeBytes > m.memLimit {
		m.log.Debug().Str("key", entry.Key.String()).Int64("size", entry.SizeBytes).Msg("Entry larger than memLimit, not storing")
		return false, nil
	}
	entry.Header = entry.Header.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[entry.Key]; ok {
		m.remove(el)
	}
	for m.total+entry.SizeBytes > m.memLimit {
		oldest := m.lru.Back()
		m.log.Trace().Str("key", oldest.Value.(Entry).Key.String()).Msg("Evicting least recently used entry")
		m.remove(oldest)
		m.evictions++
	}
	m.entries[entry.Key] = m.lru.PushFront(entry)
	m.total += entry.SizeBytes
	return true, nil
}

func (m *MemoryStorage) Evict(key cachekey.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *MemoryStorage) Limit() int64 {
	return m.memLimit
}

func (m *MemoryStorage) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Entries:   len(m.entries),
		Bytes:     m.total,
		Evictions: m.evictions,
	}
}

func (m *MemoryStorage) remove(el *list.Element) {
	entry := m.lru.Remove(el).(Entry)
	delete(m.entries, entry.Key)
	m.total -= entry.SizeBytes
}
