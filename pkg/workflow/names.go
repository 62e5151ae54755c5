package workflow

import (
	"strings"
	"unicode"
)

// hyphenate converts a script identifier to the manifest naming
// convention: camel humps and underscores become hyphens, everything
// lowercase. "addAlpha" and "add_alpha" both map to "add-alpha".
func hyphenate(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteRune('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// templateName returns the manifest template name for a step.
func templateName(hyphenated string) string {
	return "exec-" + hyphenated
}
