// Package phone canonicalizes free-form phone strings so that client records stored in
// different formats ("+34 612 34 56 78", "0034612345678", "612345678") compare equal.
package phone

import "strings"

// nationalLen is the length of a Spanish national number.
const nationalLen = 9

// Normalize returns the digits-only national form of raw: country prefix (+34, 0034, or a bare
// 34 followed by at least a national-length number) and leading zeros removed.
// Empty input yields "". Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(raw string) string {
	n := strip(raw)
	for {
		next := normalizeOnce(n)
		if next == n {
			return n
		}
		n = next
	}
}

// strip keeps digits and a single leading '+'.
func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeOnce(s string) string {
	switch {
	case strings.HasPrefix(s, "+34"):
		s = s[3:]
	case strings.HasPrefix(s, "0034"):
		s = s[4:]
	case strings.HasPrefix(s, "34") && len(s)-2 >= nationalLen:
		s = s[2:]
	}
	s = strings.TrimPrefix(s, "+")
	return strings.TrimLeft(s, "0")
}

// Equal reports whether a and b are the same number. Numbers shorter than a national
// number never match, so two empty strings are not equal.
func Equal(a, b string) bool {
	na := Normalize(a)
	return len(na) >= nationalLen && na == Normalize(b)
}

// Format groups a national number as "DDD DDD DDD". Anything else is returned unmodified.
func Format(raw string) string {
	n := Normalize(raw)
	if len(n) != nationalLen {
		return raw
	}
	return n[0:3] + " " + n[3:6] + " " + n[6:9]
}

// IsValid reports whether raw normalizes to 9..15 digits.
func IsValid(raw string) bool {
	n := Normalize(raw)
	if len(n) < nationalLen || len(n) > 15 {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SearchVariations lists the storage formats to probe for raw, in priority order.
// National numbers expand to the four formats clients are stored in; anything else
// is only searched in normalized form. Each call returns a fresh slice.
func SearchVariations(raw string) []string {
	n := Normalize(raw)
	if len(n) != nationalLen {
		return []string{n}
	}
	return []string{n, "+34" + n, "0034" + n, "34" + n}
}

// E164 returns the international form used by the WhatsApp gateway, or "" when raw is not a valid number.
func E164(raw string) string {
	if !IsValid(raw) {
		return ""
	}
	n := Normalize(raw)
	if len(n) == nationalLen {
		return "+34" + n
	}
	return "+" + n
}
