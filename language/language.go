// Package language picks the single output language for a model prompt.
package language

import "strings"

// Fallback is used when a region has no configured spoken language.
const Fallback = "Hindi"

// Codes maps the selectable language codes to the names used in prompts.
var Codes = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
	"ta": "Tamil",
	"te": "Telugu",
	"kn": "Kannada",
	"pa": "Punjabi",
	"gu": "Gujarati",
	"bn": "Bengali",
}

// Context is computed per prompt and never persisted.
type Context struct {
	Explicit        string // empty means "auto"
	LocationDefault string
	Resolved        string
}

// Resolve returns explicit when set, otherwise the location default.
// An empty location default falls back to Hindi, so Resolved is never empty.
func Resolve(explicit, locationDefault string) Context {
	explicit = strings.TrimSpace(explicit)
	locationDefault = strings.TrimSpace(locationDefault)
	if locationDefault == "" {
		locationDefault = Fallback
	}
	resolved := locationDefault
	if explicit != "" {
		resolved = explicit
	}
	return Context{Explicit: explicit, LocationDefault: locationDefault, Resolved: resolved}
}

// FromCode turns a language code into its name. Unknown or empty codes mean auto.
func FromCode(code string) string {
	return Codes[strings.ToLower(strings.TrimSpace(code))]
}

// ResolveCode is Resolve for a selected language code.
func ResolveCode(code, locationDefault string) Context {
	return Resolve(FromCode(code), locationDefault)
}
