package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		spec      string
		want      bool
	}{
		{"empty spec disables", "workflow:graph", "", false},
		{"star enables everything", "workflow:graph", "*", true},
		{"exact match", "workflow:graph", "workflow:graph", true},
		{"exact mismatch", "workflow:graph", "workflow:step", false},
		{"prefix wildcard", "workflow:graph", "workflow:*", true},
		{"prefix wildcard mismatch", "cli:transpile", "workflow:*", false},
		{"comma separated", "cli:transpile", "workflow:*,cli:*", true},
		{"exclusion wins", "workflow:graph", "*,-workflow:graph", false},
		{"exclusion wildcard", "workflow:graph", "*,-workflow:*", false},
		{"exclusion leaves others enabled", "cli:transpile", "*,-workflow:*", true},
		{"whitespace tolerated", "cli:transpile", " workflow:* , cli:* ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.namespace, tt.spec))
		})
	}
}

func TestNewCachesPerNamespace(t *testing.T) {
	a := New("test:cache")
	b := New("test:cache")
	assert.Same(t, a, b)
}

func TestNewReadsDebugAtCreation(t *testing.T) {
	t.Setenv("DEBUG", "test:enabled*")

	assert.True(t, New("test:enabled-one").Enabled())
	assert.False(t, New("test:disabled-one").Enabled())
}
