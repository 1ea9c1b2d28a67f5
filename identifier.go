package llmfetch

import "strings"

// ColumnPrefix is prepended to column identifiers that would otherwise start
// with a digit or be empty.
const ColumnPrefix = "f_"

// Sanitize maps an arbitrary string to a storage identifier: every rune
// outside [A-Za-z0-9_] becomes '_' and ASCII letters are lowercased.
// Sanitize is total and idempotent.
func Sanitize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// ColumnName returns the column identifier for a display field name.
// The result never starts with a digit and is never empty.
func ColumnName(field string) string {
	s := Sanitize(field)
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return ColumnPrefix + s
	}
	return s
}
