package listing

import (
	"regexp"
	"strings"
)

// Highlight wraps every case-insensitive occurrence of term in text with render.
// A blank term or nil render returns text unchanged.
func Highlight(text, term string, render func(string) string) string {
	if strings.TrimSpace(term) == "" || render == nil {
		return text
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, render)
}
