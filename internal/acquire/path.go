package acquire

import (
	"strings"
	"unicode"
)

// SanitizeID maps a model identifier to a single path element.
//
// Registry paths use "/" as the owner separator and never contain "--", so
// "/" becomes "--" (the same folding the Hugging Face cache uses). Characters
// that are unsafe in file names on some platforms, and whitespace, become "_",
// so "a b" and "a_b" share a directory. Registry ids never contain those
// characters; for other ids the completion marker records the id, and a
// directory fetched for one is not served for the other.
func SanitizeID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", invalidIDError{id: id, reason: "empty"}
	}
	for _, part := range strings.FieldsFunc(id, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "", invalidIDError{id: id, reason: "contains '..'"}
		}
	}
	var b strings.Builder
	b.Grow(len(id) + 4)
	for _, r := range id {
		switch {
		case r == '/':
			b.WriteString("--")
		case strings.ContainsRune(`\:*?"<>|`, r), unicode.IsSpace(r), unicode.IsControl(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "." || out == ".." || strings.Trim(out, "-") == "" {
		return "", invalidIDError{id: id, reason: "no usable characters"}
	}
	return out, nil
}
