package domain

import "slices"

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = "nl"

// Languages is the set of document languages the service answers for.
type Languages struct {
	codes []string
}

// NewLanguages creates a language set. An empty list falls back to nl and en.
func NewLanguages(codes ...string) Languages {
	if len(codes) == 0 {
		codes = []string{DefaultLanguage, "en"}
	}
	return Languages{codes: slices.Clone(codes)}
}

// Resolve applies the default and checks membership.
func (l Languages) Resolve(lang string) (string, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !slices.Contains(l.codes, lang) {
		return "", &UnsupportedLanguageError{Language: lang, Supported: l.Codes()}
	}
	return lang, nil
}

// Codes returns a copy of the configured codes.
func (l Languages) Codes() []string { return slices.Clone(l.codes) }
