package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cachekey "github.com/always-cache/httpcache/pkg/cache-key"
	serializer "github.com/always-cache/httpcache/pkg/response-serializer"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/zerolog"
)

var memoryDatabases atomic.Int64

// SQLiteStorage keeps entries in an SQLite database, in wire format.
// It enforces the same byte budget as MemoryStorage.
type SQLiteStorage struct {
	db         *sql.DB
	writeMutex *sync.Mutex
	memLimit   int64
	// recency counter, higher is more recently used
	clock     int64
	evictions uint64
	log       zerolog.Logger
}

// NewSQLiteStorage opens the database dsn and creates the cache table if needed.
// If dsn is empty, a new in-memory database is opened.
func NewSQLiteStorage(dsn string, memLimit int64, logger zerolog.Logger) (*SQLiteStorage, error) {
	if memLimit <= 0 {
		return nil, ErrInvalidMemLimit
	}
	if dsn == "" {
		dsn = fmt.Sprintf("file:httpcache-%d?mode=memory&cache=shared", memoryDatabases.Add(1))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection serializes all statements
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		status INTEGER,
		size INTEGER,
		stored_at INTEGER,
		last_used INTEGER,
		bytes BLOB
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS last_used_idx ON cache (last_used)")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &SQLiteStorage{
		db:         db,
		writeMutex: &sync.Mutex{},
		memLimit:   memLimit,
		log:        logger,
	}
	if err := db.QueryRow("SELECT COALESCE(MAX(last_used), 0) FROM cache").Scan(&s.clock); err != nil {
		db.Close()
		return nil, err
	}
	// an existing database may have been written with a larger limit
	if err := s.shrink(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Lookup(key cachekey.Key) (Entry, bool, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	var size, storedAt int64
	var bts []byte
	err := s.db.QueryRow("SELECT size, stored_at, bytes FROM cache WHERE key = ?", key.String()).
		Scan(&size, &storedAt, &bts)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	} else if err != nil {
		return Entry{}, false, err
	}
	res, body, err := serializer.BytesToResponse(bts, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	s.clock++
	if _, err := s.db.Exec("UPDATE cache SET last_used = ? WHERE key = ?", s.clock, key.String()); err != nil {
		return Entry{}, false, err
	}
	return Entry{
		Key:        key,
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
		SizeBytes:  size,
		StoredAt:   time.Unix(0, storedAt),
	}, true, nil
}

func (s *SQLiteStorage) Insert(entry Entry) (bool, error) {
	entry.SizeBytes = Size(entry.Header, entry.Body)
	if entry.SizeBytes > s.memLimit {
		s.log.Debug().Str("key", entry.Key.String()).Int64("size", entry.SizeBytes).Msg("Entry larger than memLimit, not storing")
		return false, nil
	}
	bts := serializer.ResponseToBytes(entry.StatusCode, entry.Header, entry.Body)

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cache WHERE key = ?", entry.Key.String()); err != nil {
		return false, err
	}
	evicted, err := s.evictUntil(tx, s.memLimit-entry.SizeBytes)
	if err != nil {
		return false, err
	}
	s.clock++
	_, err = tx.Exec(`INSERT INTO cache 
		(key, status, size, stored_at, last_used, bytes) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Key.String(), entry.StatusCode, entry.SizeBytes, entry.StoredAt.UnixNano(), s.clock, bts)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	s.evictions += evicted
	return true, nil
}

func (s *SQLiteStorage) Evict(key cachekey.Key) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM cache WHERE key = ?", key.String())
	return err
}

func (s *SQLiteStorage) Limit() int64 {
	return s.memLimit
}

func (s *SQLiteStorage) Stats() Stats {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	stats := Stats{Evictions: s.evictions}
	err := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(size), 0) FROM cache").Scan(&stats.Entries, &stats.Bytes)
	if err != nil {
		s.log.Error().Err(err).Msg("Could not read cache stats")
	}
	return stats
}

// evictUntil removes least recently used entries until at most budget bytes are stored.
func (s *SQLiteStorage) evictUntil(tx *sql.Tx, budget int64) (uint64, error) {
	var total int64
	if err := tx.QueryRow("SELECT COALESCE(SUM(size), 0) FROM cache").Scan(&total); err != nil {
		return 0, err
	}
	var evicted uint64
	for total > budget {
		var key string
		var size int64
		err := tx.QueryRow("SELECT key, size FROM cache ORDER BY last_used ASC LIMIT 1").Scan(&key, &size)
		if err != nil {
			return evicted, err
		}
		s.log.Trace().Str("key", key).Msg("Evicting least recently used entry")
		if _, err := tx.Exec("DELETE FROM cache WHERE key = ?", key); err != nil {
			return evicted, err
		}
		total -= size
		evicted++
	}
	return evicted, nil
}

func (s *SQLiteStorage) shrink() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	evicted, err := s.evictUntil(tx, s.memLimit)
	if err != nil {
		return err
	}
	s.evictions += evicted
	return tx.Commit()
}
