package rfc2616

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPragmaNoCache(t *testing.T) {
	header := http.Header{}
	if PragmaNoCache(header) {
		t.Fatal("Empty header has pragma")
	}
	header.Set("Pragma", "foo, No-Cache")
	if !PragmaNoCache(header) {
		t.Fatal("no-cache pragma not found")
	}
}

func TestStatusCacheCandidate(t *testing.T) {
	for _, code := range []int{200, 203, 206, 300, 301} {
		if !StatusCacheCandidate(code) {
			t.Errorf("%d is not a candidate", code)
		}
	}
	for _, code := range []int{201, 202, 204, 302, 304, 404, 410, 500} {
		if StatusCacheCandidate(code) {
			t.Errorf("%d is a candidate", code)
		}
	}
}

func TestHasValidator(t *testing.T) {
	header := http.Header{}
	if HasValidator(header) {
		t.Fatal("Empty header has validator")
	}
	header.Set("ETag", `"abc"`)
	if !HasValidator(header) {
		t.Fatal("ETag not found")
	}
	header = http.Header{}
	header.Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
	if !HasValidator(header) {
		t.Fatal("Last-Modified not found")
	}
}

func TestStorableHeader(t *testing.T) {
	header := http.Header{}
	header.Set("Connection", "close, X-Conn-Specific")
	header.Set("X-Conn-Specific", "1")
	header.Set("Keep-Alive", "timeout=5")
	header.Set("Transfer-Encoding", "chunked")
	header.Set("Cache-Control", `no-cache="Set-Cookie", max-age=60`)
	header.Set("Set-Cookie", "session=1")
	header.Add("X-Multi", "one")
	header.Add("X-Multi", "two")

	h := StorableHeader(header)
	for _, name := range []string{"Connection", "X-Conn-Specific", "Keep-Alive", "Transfer-Encoding", "Set-Cookie"} {
		if h.Get(name) != "" {
			t.Errorf("%s was stored", name)
		}
	}
	if values := h.Values("X-Multi"); len(values) != 2 || values[0] != "one" || values[1] != "two" {
		t.Fatalf("X-Multi is %v", values)
	}
	if h.Get("Cache-Control") == "" {
		t.Fatal("Cache-Control was removed")
	}
	if header.Get("Set-Cookie") == "" {
		t.Fatal("Original header was modified")
	}
}

func TestInvalidateURIs(t *testing.T) {
	req := httptest.NewRequest("POST", "http://example.com/items?page=1", nil)
	header := http.Header{}
	header.Set("Location", "/items/42")
	header.Set("Content-Location", "http://other.example.com/items/42")

	uris := InvalidateURIs(req, http.StatusCreated, header)
	if len(uris) != 2 {
		t.Fatalf("URIs are %v", uris)
	}
	if uris[0].String() != "http://example.com/items?page=1" {
		t.Fatalf("Request-URI is %s", uris[0])
	}
	if uris[1].String() != "http://example.com/items/42" {
		t.Fatalf("Location is %s", uris[1])
	}
}

func TestInvalidateURIsOnlyOnSuccess(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/items/1", nil)
	if uris := InvalidateURIs(req, http.StatusInternalServerError, http.Header{}); len(uris) != 0 {
		t.Fatalf("URIs are %v", uris)
	}
	get := httptest.NewRequest("GET", "/items/1", nil)
	if uris := InvalidateURIs(get, http.StatusOK, http.Header{}); len(uris) != 0 {
		t.Fatalf("URIs are %v", uris)
	}
}
