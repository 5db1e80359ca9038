// Package i18n looks up localized messages by dotted key. Bundles are
// embedded at build time; a Translator is built once and passed to whoever
// renders messages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type Translator struct {
	fallback string
	langs    []string // fallback first; indexes line up with the matcher's tags
	matcher  language.Matcher
	bundles  map[string]map[string]string
}

// New loads every embedded locale. fallback must be one of them; it answers
// requests whose language is unsupported and keys a locale is missing.
func New(fallback string) (*Translator, error) {
	bundles, err := loadBundles(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	if _, ok := bundles[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback language %q has no locale file", fallback)
	}

	langs := []string{fallback}
	for lang := range bundles {
		if lang != fallback {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs[1:])

	tags := make([]language.Tag, len(langs))
	for i, l := range langs {
		tags[i] = language.Make(l)
	}

	return &Translator{
		fallback: fallback,
		langs:    langs,
		matcher:  language.NewMatcher(tags),
		bundles:  bundles,
	}, nil
}

// Resolve picks the best supported language for an Accept-Language header.
func (t *Translator) Resolve(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return t.fallback
	}
	_, idx := language.MatchStrings(t.matcher, acceptLanguage)
	if idx < 0 || idx >= len(t.langs) {
		return t.fallback
	}
	return t.langs[idx]
}

// T returns the message for key in lang with {{name}} placeholders filled
// from params. Missing keys fall back to the fallback language, then to the
// key itself.
func (t *Translator) T(lang, key string, params map[string]string) string {
	msg, ok := t.bundles[lang][key]
	if !ok {
		msg, ok = t.bundles[t.fallback][key]
	}
	if !ok {
		return key
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{{"+name+"}}", value)
	}
	return msg
}

func (t *Translator) Has(lang, key string) bool {
	_, ok := t.bundles[lang][key]
	return ok
}

func (t *Translator) Languages() []string {
	return append([]string(nil), t.langs...)
}

func (t *Translator) Fallback() string {
	return t.fallback
}

func loadBundles(fsys fs.FS, dir string) (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	bundles := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}

		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", tree, flat)
		bundles[strings.TrimSuffix(entry.Name(), ".json")] = flat
	}
	return bundles, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			flatten(key, val, out)
		}
	}
}
