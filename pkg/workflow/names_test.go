package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHyphenate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"addAlpha", "add-alpha"},
		{"add_alpha", "add-alpha"},
		{"getNthWord", "get-nth-word"},
		{"main", "main"},
		{"already-hyphenated", "already-hyphenated"},
		{"Upper", "upper"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hyphenate(tt.in), tt.in)
	}
}

func TestTemplateName(t *testing.T) {
	assert.Equal(t, "exec-add-alpha", templateName("add-alpha"))
}
