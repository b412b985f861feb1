package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "A lovely walk in the woods", "A lovely walk in the woods"},
		{"script content dropped", "<script>alert(1)</script>Nice tour", "Nice tour"},
		{"markup removed, text kept", "<b>Great</b> view", "Great view"},
		{"whitespace collapsed", "  too   many    spaces  ", "too many spaces"},
		{"entities unescaped", "Fish &amp; Chips", "Fish & Chips"},
		{"newlines preserved", "line one\nline  two", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
