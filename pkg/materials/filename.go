package materials

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// mojibakeCharmaps are the single-byte encodings a garbled filename is most
// likely to have been mis-decoded with: ISO 8859-1 (what multipart parsers
// fall back to) and Windows-1252 (what browsers render it as).
var mojibakeCharmaps = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// RepairEncoding undoes the common multipart mojibake where UTF-8 filename
// bytes were decoded one byte per rune ("Отчёт" arriving as "ÐžÑ‚Ñ‡Ñ‘Ñ‚").
// Each rune is re-encoded to its original byte and the bytes reinterpreted
// as UTF-8. Best effort: if no candidate encoding round-trips to valid
// UTF-8, the name is returned unchanged.
func RepairEncoding(name string) string {
	for _, cm := range mojibakeCharmaps {
		encoded, err := cm.NewEncoder().String(name)
		if err != nil {
			continue
		}
		if utf8.ValidString(encoded) {
			return encoded
		}
	}
	return name
}

// SafeFilename builds a collision-resistant storage name from a raw upload
// filename: a millisecond timestamp prefix plus the repaired name with every
// rune outside the allow-list replaced by '_'. Dots survive, so the
// extension reaches the storage provider verbatim and local type inference
// agrees with it. Total over all inputs, including the empty string.
func SafeFilename(name string, now time.Time) string {
	repaired := RepairEncoding(name)

	var b strings.Builder
	b.Grow(len(repaired) + 16)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	for _, r := range repaired {
		if safeFilenameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func safeFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_':
		return true
	}
	return unicode.Is(unicode.Cyrillic, r)
}

// Extension returns the lower-cased substring after the last '.' of name,
// or "" when the name has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
