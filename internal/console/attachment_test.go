package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
	}{
		{
			name:        "quoted filename",
			disposition: `attachment; filename="protocol.pdf"`,
			want:        "protocol.pdf",
		},
		{
			name:        "unquoted filename",
			disposition: `attachment; filename=protocol.pdf`,
			want:        "protocol.pdf",
		},
		{
			name:        "rfc5987 utf8 wins over plain",
			disposition: `attachment; filename="fallback.pdf"; filename*=UTF-8''%D0%BF%D1%80%D0%BE%D1%82%D0%BE%D0%BA%D0%BE%D0%BB.pdf`,
			want:        "протокол.pdf",
		},
		{
			name:        "missing header",
			disposition: "",
			want:        "download",
		},
		{
			name:        "no filename parameter",
			disposition: "attachment",
			want:        "download",
		},
		{
			name:        "garbage header",
			disposition: ";;;=;;",
			want:        "download",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromDisposition(tt.disposition))
		})
	}
}

func TestFilenameFromDisposition_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 80) + ".pdf"
	got := FilenameFromDisposition(`attachment; filename="` + long + `"`)

	assert.Len(t, []rune(got), 50)
	assert.True(t, strings.HasSuffix(got, ".pdf"), "extension must survive truncation: %q", got)
}

func TestFilenameFromDisposition_TruncatesMultibyteByRunes(t *testing.T) {
	long := strings.Repeat("п", 80) + ".pdf"
	got := FilenameFromDisposition(`attachment; filename*=UTF-8''` + escapeRunes(long))

	assert.Len(t, []rune(got), 50)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestFilenameFromDisposition_ShortNameUntouched(t *testing.T) {
	assert.Equal(t, "a.pdf", FilenameFromDisposition(`attachment; filename="a.pdf"`))
}

// escapeRunes percent-encodes every byte, the way RFC 5987 values arrive.
func escapeRunes(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' {
			b.WriteByte(c)
			continue
		}
		b.WriteString("%")
		const hex = "0123456789ABCDEF"
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
