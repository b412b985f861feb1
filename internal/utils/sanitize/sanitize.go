package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all HTML tags and attributes. bluemonday policies are
// read-only after build, so sharing one across requests is safe.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Clean strips HTML from free-text user input (tour descriptions, review
// bodies) and normalizes whitespace before storage. Repositories assume
// already-clean input.
func Clean(s string) string {
	out := strict.Sanitize(s)
	out = strings.TrimSpace(out)
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, " ", " ")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
