package rfc2616

import (
	"net/http"
	"testing"
	"time"
)

func TestMaxAge(t *testing.T) {
	cc := ParseCacheControl([]string{"max-age=60"})
	val, ok := cc.Get("max-age")
	if !ok {
		t.Fatal("Could not get directive")
	}
	if val != "60" {
		t.Fatalf("Value is %s", val)
	}
	if maxAge, ok := cc.MaxAge(); !ok || maxAge != time.Minute {
		t.Fatalf("MaxAge is %v, %v", maxAge, ok)
	}
}

func TestNegativeMaxAge(t *testing.T) {
	cc := ParseCacheControl([]string{"max-age=-1"})
	if maxAge, ok := cc.MaxAge(); !ok || maxAge != -time.Second {
		t.Fatalf("MaxAge is %v, %v", maxAge, ok)
	}
}

func TestMalformedMaxAgeIsAbsent(t *testing.T) {
	for _, header := range []string{"max-age=abc", "max-age", "max-age=", `max-age="6 0"`} {
		if maxAge, ok := ParseCacheControl([]string{header}).MaxAge(); ok {
			t.Errorf("%s: MaxAge is %v", header, maxAge)
		}
	}
}

func TestReal(t *testing.T) {
	cc := ParseCacheControl([]string{"public, max-age=0, s-maxage=600"})
	if val, ok := cc.Get("public"); !ok || val != "" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("max-age"); !ok || val != "0" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("s-maxage"); !ok || val != "600" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
}

func TestCaseInsensitive(t *testing.T) {
	cc := ParseCacheControl([]string{"No-Store, MAX-AGE=5"})
	if !cc.HasDirective("no-store") {
		t.Fatal("no-store not found")
	}
	if !cc.HasDirective("Max-Age") {
		t.Fatal("max-age not found")
	}
}

func TestQuotedArgumentWithComma(t *testing.T) {
	cc := ParseCacheControl([]string{`no-cache="set-cookie, x-something", max-age=60`})
	fields := cc.NoCacheFields()
	if len(fields) != 2 || fields[0] != "set-cookie" || fields[1] != "x-something" {
		t.Fatalf("Fields are %v", fields)
	}
	if cc.NoCacheUnqualified() {
		t.Fatal("no-cache is qualified")
	}
	if maxAge, ok := cc.MaxAge(); !ok || maxAge != time.Minute {
		t.Fatalf("MaxAge is %v", maxAge)
	}
}

func TestMultipleHeaders(t *testing.T) {
	header := http.Header{}
	header.Add("Cache-Control", "public")
	header.Add("Cache-Control", "max-age=30")
	cc := GetCacheControl(header)
	if cc.Len() != 2 || !cc.HasDirective("public") || !cc.HasDirective("max-age") {
		t.Fatalf("Directives are %+v", cc)
	}
}

func TestFirstOccurrenceWins(t *testing.T) {
	cc := ParseCacheControl([]string{"max-age=60, max-age=0"})
	if val, _ := cc.Get("max-age"); val != "60" {
		t.Fatalf("max-age is %s", val)
	}
}

func TestBareNoCacheWins(t *testing.T) {
	cc := ParseCacheControl([]string{`no-cache="x-field", no-cache`})
	if !cc.NoCacheUnqualified() {
		t.Fatal("Bare no-cache lost")
	}
}

func TestMalformedDirectivesIgnored(t *testing.T) {
	cc := ParseCacheControl([]string{`, "quoted", max-age=1 2, no-cache="unterminated, public,,`})
	if cc.HasDirective("max-age") {
		t.Fatal("Malformed max-age kept")
	}
	if cc.HasDirective("public") {
		t.Fatal("Directive inside unterminated quote kept")
	}
	if cc.Len() != 0 {
		t.Fatalf("Directives are %+v", cc)
	}
}

func TestForbidsStorage(t *testing.T) {
	tests := []struct {
		header  string
		forbids bool
	}{
		{"private", true},
		{"no-store", true},
		{"no-cache", true},
		{`no-cache="x-something"`, false},
		{"public, max-age=60", false},
		{"", false},
	}
	for _, test := range tests {
		if got := ParseCacheControl([]string{test.header}).ForbidsStorage(); got != test.forbids {
			t.Errorf("%q: ForbidsStorage is %v", test.header, got)
		}
	}
}
