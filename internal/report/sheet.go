package report

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxSheetName is Excel's limit on worksheet name length.
const maxSheetName = 31

const invalidSheetChars = `:\/?*[]`

// sheetNamer hands out unique, Excel-safe worksheet names.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]bool)}
}

// name returns a worksheet name for app. Characters Excel rejects become
// underscores; clashes (case-insensitive) get a numeric suffix.
func (n *sheetNamer) name(app string) string {
	base := sanitizeSheetName(app)
	candidate := base
	for i := 2; n.used[strings.ToLower(candidate)]; i++ {
		suffix := " (" + strconv.Itoa(i) + ")"
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

func sanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(strings.TrimSpace(s), "'")
	if s == "" {
		s = "app"
	}
	return truncateRunes(s, maxSheetName)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
