package console

import (
	"mime"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Attachment is a downloaded binary document.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	fallbackFilename = "download"
	maxFilenameRunes = 50
)

// FilenameFromDisposition extracts a usable filename from a
// Content-Disposition header. RFC 5987 filename* wins over the plain
// filename parameter; the result is truncated to 50 runes with the
// extension preserved, and "download" is returned when nothing usable is
// present.
func FilenameFromDisposition(disposition string) string {
	name := parseDispositionFilename(disposition)
	if name == "" {
		return fallbackFilename
	}
	return truncateFilename(name, maxFilenameRunes)
}

func parseDispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	// mime.ParseMediaType rejects headers real backends emit (unquoted
	// UTF-8 names, stray semicolons), so fall back to scanning the
	// parameters by hand.
	for _, part := range strings.Split(disposition, ";") {
		part = strings.TrimSpace(part)
		if value, ok := cutPrefixFold(part, "filename*="); ok {
			if name := decodeExtFilename(value); name != "" {
				return name
			}
		}
	}
	for _, part := range strings.Split(disposition, ";") {
		part = strings.TrimSpace(part)
		if value, ok := cutPrefixFold(part, "filename="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

// decodeExtFilename decodes an RFC 5987 extended value:
// charset'language'percent-encoded-name.
func decodeExtFilename(value string) string {
	parts := strings.SplitN(value, "'", 3)
	if len(parts) != 3 {
		return ""
	}
	decoded, err := url.QueryUnescape(parts[2])
	if err != nil {
		return ""
	}
	return decoded
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

// truncateFilename shortens name to at most limit runes, keeping the
// extension intact when there is one.
func truncateFilename(name string, limit int) string {
	if utf8.RuneCountInString(name) <= limit {
		return name
	}
	ext := ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		ext = name[idx:]
	}
	keep := limit - utf8.RuneCountInString(ext)
	if keep < 1 {
		keep = 1
	}
	base := []rune(strings.TrimSuffix(name, ext))
	if len(base) > keep {
		base = base[:keep]
	}
	return string(base) + ext
}
