package cache

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"reflect"
	"testing"

	cachekey "github.com/always-cache/httpcache/pkg/cache-key"

	"github.com/rs/zerolog"
)

type providerFactory func(t *testing.T, memLimit int64) Provider

var providers = map[string]providerFactory{
	"memory": func(t *testing.T, memLimit int64) Provider {
		m, err := NewMemoryStorage(memLimit, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		return m
	},
	"sqlite": func(t *testing.T, memLimit int64) Provider {
		s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "cache.db"), memLimit, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	},
}

func key(path string) cachekey.Key {
	return cachekey.Key{Method: "GET", URI: "example.com" + path}
}

// entryOfSize returns an entry without headers, so that its size is the body length.
func entryOfSize(path string, size int) Entry {
	return NewEntry(key(path), http.StatusOK, nil, bytes.Repeat([]byte("x"), size))
}

func forEachProvider(t *testing.T, test func(t *testing.T, newProvider func(memLimit int64) Provider)) {
	for name, factory := range providers {
		factory := factory
		t.Run(name, func(t *testing.T) {
			test(t, func(memLimit int64) Provider { return factory(t, memLimit) })
		})
	}
}

func TestInvalidMemLimit(t *testing.T) {
	if _, err := NewMemoryStorage(0, zerolog.Nop()); !errors.Is(err, ErrInvalidMemLimit) {
		t.Fatalf("Error is %v", err)
	}
	if _, err := NewSQLiteStorage("", -1, zerolog.Nop()); !errors.Is(err, ErrInvalidMemLimit) {
		t.Fatalf("Error is %v", err)
	}
}

func TestEntrySize(t *testing.T) {
	header := http.Header{}
	header.Set("A", "b")
	entry := NewEntry(key("/"), http.StatusOK, header, []byte("hello"))
	// "A: b\r\n" plus body
	if entry.SizeBytes != 11 {
		t.Fatalf("Size is %d", entry.SizeBytes)
	}
}

func TestInsertAndLookup(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(512000)
		header := http.Header{}
		header.Set("Content-Type", "text/plain")
		header.Add("X-Multi", "one")
		header.Add("X-Multi", "two")
		entry := NewEntry(key("/page"), http.StatusMovedPermanently, header, []byte("hello"))

		if ok, err := p.Insert(entry); !ok || err != nil {
			t.Fatalf("Insert returned %v, %v", ok, err)
		}
		got, ok, err := p.Lookup(key("/page"))
		if err != nil || !ok {
			t.Fatalf("Lookup returned %v, %v", ok, err)
		}
		if got.StatusCode != http.StatusMovedPermanently {
			t.Fatalf("Status code is %d", got.StatusCode)
		}
		if string(got.Body) != "hello" {
			t.Fatalf("Body is %s", got.Body)
		}
		if values := got.Header.Values("X-Multi"); len(values) != 2 || values[0] != "one" || values[1] != "two" {
			t.Fatalf("X-Multi is %v", values)
		}
		if got.SizeBytes != entry.SizeBytes {
			t.Fatalf("Size is %d, expected %d", got.SizeBytes, entry.SizeBytes)
		}
		if _, ok, _ := p.Lookup(key("/other")); ok {
			t.Fatal("Found entry for other key")
		}
	})
}

func TestHeaderRoundTrip(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(512000)
		header := http.Header{}
		header.Set("Pragma", "no-cache")
		header.Set("Etag", `"v1"`)
		header.Add("Set-Cookie", "a=1")
		header.Add("Set-Cookie", "b=2")
		p.Insert(NewEntry(key("/pragma"), http.StatusOK, header, []byte("body")))
		p.Insert(NewEntry(cachekey.Key{Method: "HEAD", URI: "example.com/pragma"}, http.StatusOK, header, nil))

		for _, k := range []cachekey.Key{key("/pragma"), {Method: "HEAD", URI: "example.com/pragma"}} {
			got, ok, err := p.Lookup(k)
			if err != nil || !ok {
				t.Fatalf("%s: lookup returned %v, %v", k, ok, err)
			}
			if !reflect.DeepEqual(got.Header, header) {
				t.Fatalf("%s: header is %v, stored %v", k, got.Header, header)
			}
		}
	})
}

func TestOverflowEvictsLeastRecentlyInserted(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(512000)
		p.Insert(entryOfSize("/a", 300000))
		p.Insert(entryOfSize("/b", 300000))

		if _, ok, _ := p.Lookup(key("/a")); ok {
			t.Fatal("A not evicted")
		}
		if _, ok, _ := p.Lookup(key("/b")); !ok {
			t.Fatal("B not stored")
		}
		stats := p.Stats()
		if stats.Entries != 1 || stats.Bytes != 300000 {
			t.Fatalf("Stats are %+v", stats)
		}
		if stats.Evictions != 1 {
			t.Fatalf("Evictions are %d", stats.Evictions)
		}
	})
}

func TestOverflowEvictsLeastRecentlyUsed(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(300)
		p.Insert(entryOfSize("/a", 100))
		p.Insert(entryOfSize("/b", 100))
		p.Insert(entryOfSize("/c", 100))
		// serving A makes B the least recently used
		p.Lookup(key("/a"))
		p.Insert(entryOfSize("/d", 100))

		for path, stored := range map[string]bool{"/a": true, "/b": false, "/c": true, "/d": true} {
			if _, ok, _ := p.Lookup(key(path)); ok != stored {
				t.Errorf("%s stored: %v", path, ok)
			}
		}
	})
}

func TestEntryLargerThanLimitRejected(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(100)
		p.Insert(entryOfSize("/small", 50))
		ok, err := p.Insert(entryOfSize("/big", 101))
		if ok || err != nil {
			t.Fatalf("Insert returned %v, %v", ok, err)
		}
		if _, ok, _ := p.Lookup(key("/big")); ok {
			t.Fatal("Big entry stored")
		}
		if _, ok, _ := p.Lookup(key("/small")); !ok {
			t.Fatal("Small entry evicted by rejected entry")
		}
	})
}

func TestReplaceSameKey(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(150)
		p.Insert(entryOfSize("/a", 100))
		p.Insert(entryOfSize("/a", 120))
		stats := p.Stats()
		if stats.Entries != 1 || stats.Bytes != 120 || stats.Evictions != 0 {
			t.Fatalf("Stats are %+v", stats)
		}
	})
}

func TestCapacityInvariant(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(1000)
		sizes := []int{10, 400, 999, 1, 500, 1001, 250, 250, 250, 250, 600, 0}
		for i, size := range sizes {
			p.Insert(entryOfSize("/"+string(rune('a'+i)), size))
			if bytes := p.Stats().Bytes; bytes > 1000 {
				t.Fatalf("After insert %d: %d bytes stored", i, bytes)
			}
		}
	})
}

func TestEvict(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(1000)
		p.Insert(entryOfSize("/a", 10))
		if err := p.Evict(key("/a")); err != nil {
			t.Fatal(err)
		}
		if err := p.Evict(key("/missing")); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := p.Lookup(key("/a")); ok {
			t.Fatal("Entry not evicted")
		}
		if stats := p.Stats(); stats.Entries != 0 || stats.Bytes != 0 || stats.Evictions != 0 {
			t.Fatalf("Stats are %+v", stats)
		}
	})
}

func TestLookupReturnsCopy(t *testing.T) {
	forEachProvider(t, func(t *testing.T, newProvider func(int64) Provider) {
		p := newProvider(1000)
		header := http.Header{}
		header.Set("X-Test", "stored")
		p.Insert(NewEntry(key("/a"), http.StatusOK, header, []byte("x")))
		header.Set("X-Test", "changed")

		got, _, _ := p.Lookup(key("/a"))
		got.Header.Set("X-Test", "changed")
		again, _, _ := p.Lookup(key("/a"))
		if v := again.Header.Get("X-Test"); v != "stored" {
			t.Fatalf("Stored header is %s", v)
		}
	})
}

func TestSQLiteReopenKeepsEntries(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLiteStorage(dsn, 1000, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	s.Insert(entryOfSize("/a", 400))
	s.Insert(entryOfSize("/b", 400))
	s.Lookup(key("/a"))
	s.Close()

	// a smaller limit evicts the least recently used entry
	s, err = NewSQLiteStorage(dsn, 500, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, _ := s.Lookup(key("/a")); !ok {
		t.Fatal("A not kept")
	}
	if _, ok, _ := s.Lookup(key("/b")); ok {
		t.Fatal("B kept")
	}
}

func TestSQLiteInMemoryDatabasesAreSeparate(t *testing.T) {
	a, err := NewSQLiteStorage("", 1000, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewSQLiteStorage("", 1000, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	a.Insert(entryOfSize("/a", 10))
	if _, ok, _ := b.Lookup(key("/a")); ok {
		t.Fatal("Entry visible in other database")
	}
}
