package rfc2616

import "strings"

// §  2.2 Basic Rules
// §
// §     Many HTTP/1.1 header field values consist of words separated by LWS
// §     or special characters. These special characters MUST be in a quoted
// §     string to be used within a parameter value (as defined in section
// §     3.6).
// §
// §         token          = 1*<any CHAR except CTLs or separators>
// §         separators     = "(" | ")" | "<" | ">" | "@"
// §                        | "," | ";" | ":" | "\" | <">
// §                        | "/" | "[" | "]" | "?" | "="
// §                        | "{" | "}" | SP | HT

const separators = "()<>@,;:\\\"/[]?={} \t"

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 31 || c >= 127 || strings.IndexByte(separators, c) >= 0 {
			return false
		}
	}
	return true
}

// §         quoted-string  = ( <"> *(qdtext | quoted-pair ) <"> )
// §         qdtext         = <any TEXT except <">>
// §
// §     The backslash character ("\") MAY be used as a single-character
// §     quoting mechanism only within quoted-string and comment constructs.
// §
// §         quoted-pair    = "\" CHAR
func unquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		if !escaped && s[i] == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(s[i])
	}
	return b.String()
}

// §  2.1 Augmented BNF
// §
// §     #rule
// §        A construct "#" is defined, similar to "*", for defining lists of
// §        elements. [...] null elements are allowed, but do not contribute
// §        to the count of elements present.

// splitList splits a "#rule" list on commas outside quoted-strings.
// Elements are trimmed and empty elements dropped.
func splitList(value string) []string {
	list := make([]string, 0)
	inQuotes, escaped := false, false
	start := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case escaped:
			escaped = false
		case inQuotes && c == '\\':
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			if item := strings.TrimSpace(value[start:i]); item != "" {
				list = append(list, item)
			}
			start = i + 1
		}
	}
	if item := strings.TrimSpace(value[start:]); item != "" {
		list = append(list, item)
	}
	return list
}
