package vitrine

import (
	"regexp"
	"strings"
)

// The admin accepts free text that later lands verbatim in markdown files
// and JSON responses. Rather than escaping on the way out, the store never
// accepts markup-capable fragments: angle brackets, javascript: URIs and
// inline event-handler attributes are stripped before anything touches disk.
var (
	jsURIPattern     = regexp.MustCompile(`(?i)javascript\s*:`)
	eventAttrPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// SanitizeText removes script-bearing fragments from a free-text field.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = jsURIPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	return s
}

// SanitizeAll sanitizes a slice of free-text values in place and drops
// entries that end up empty.
func SanitizeAll(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(SanitizeText(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
