// Package i18n looks up user-facing text by dotted key.
package i18n

import (
	"embed"
	"fmt"
	"path"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Fallback is consulted when a key is missing in the requested language.
const Fallback = "en"

// Translator resolves keys against the embedded catalogs. Nested YAML maps
// become dotted message IDs; {{.name}} placeholders are filled from the
// replacement map.
type Translator struct {
	bundle      *goi18n.Bundle
	defaultLang string
	ids         map[string]map[string]struct{}
	matcher     language.Matcher
	order       []string
}

// New loads the embedded catalogs. defaultLang is used when no requested
// language matches.
func New(defaultLang string) (*Translator, error) {
	files, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	bundle := goi18n.NewBundle(language.Make(Fallback))
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	t := &Translator{bundle: bundle, ids: map[string]map[string]struct{}{}}
	for _, f := range files {
		mf, err := bundle.LoadMessageFileFS(locales, path.Join("locales", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", f.Name(), err)
		}
		lang := mf.Tag.String()
		if t.ids[lang] == nil {
			t.ids[lang] = map[string]struct{}{}
		}
		for _, m := range mf.Messages {
			t.ids[lang][m.ID] = struct{}{}
		}
	}

	if !t.Supports(defaultLang) {
		defaultLang = Fallback
	}
	t.defaultLang = defaultLang

	// the matcher falls back to its first tag when nothing matches
	ordered := []language.Tag{language.Make(defaultLang)}
	t.order = []string{defaultLang}
	for _, tag := range bundle.LanguageTags() {
		if tag.String() != defaultLang {
			ordered = append(ordered, tag)
			t.order = append(t.order, tag.String())
		}
	}
	t.matcher = language.NewMatcher(ordered)
	return t, nil
}

// Default is the language used when nothing else is requested.
func (t *Translator) Default() string { return t.defaultLang }

// Supports reports whether lang has a catalog.
func (t *Translator) Supports(lang string) bool {
	_, ok := t.ids[lang]
	return ok
}

// Match picks the best supported language for an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.order[idx]
}

// T resolves key for lang, then for the default language, then for the
// fallback language, and returns the key itself when no catalog has it.
func (t *Translator) T(lang, key string, repl map[string]string) string {
	if !t.Supports(lang) {
		lang = t.defaultLang
	}
	loc := goi18n.NewLocalizer(t.bundle, lang, t.defaultLang)
	cfg := &goi18n.LocalizeConfig{MessageID: key}
	if repl != nil {
		cfg.TemplateData = repl
	}
	msg, err := loc.Localize(cfg)
	if err != nil && msg == "" {
		return key
	}
	return msg
}
