package web

import (
	"html/template"
	"strings"

	"github.com/vilaca/gh-lookup/internal/theme"
)

// templateFuncs returns the helper functions available to templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"languageClass": languageClass,
		"themeLabel":    themeLabel,
	}
}

// languageClass returns the styling class for a language badge.
// Only the class is lower-cased; the badge text keeps the original casing.
func languageClass(language string) string {
	return strings.ToLower(language)
}

// themeLabel returns the toggle button text, naming the theme a click switches to.
func themeLabel(t theme.Theme) string {
	if t == theme.Dark {
		return "☀️ Light Mode"
	}
	return "🌙 Dark Mode"
}
