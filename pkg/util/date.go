package util

import (
	"strings"
	"time"
)

// FormatDateTpl formats a millisecond Unix timestamp using a template with
// human-friendly placeholders. Returns "" when ts is zero.
//
// Supported placeholders: YYYY, YY, MM, DD, hh, mm, ss.
//
//	FormatDateTpl(ts, "YYYY-MM-DD hh:mm") // "2023-11-10 00:00"
func FormatDateTpl(ts int64, tpl string) string {
	if ts == 0 {
		return ""
	}

	// YYYY must be handled before YY.
	replacements := []struct{ placeholder, layout string }{
		{"YYYY", "2006"},
		{"YY", "06"},
		{"MM", "01"},
		{"DD", "02"},
		{"hh", "15"},
		{"mm", "04"},
		{"ss", "05"},
	}

	goTpl := tpl
	for _, r := range replacements {
		goTpl = strings.ReplaceAll(goTpl, r.placeholder, r.layout)
	}

	return time.UnixMilli(ts).Format(goTpl)
}
