// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

// I18n holds the embedded message catalogs. It is read-only after New.
type I18n struct {
	catalogs    map[string]map[string]string
	defaultLang string
}

func New(defaultLang string) (*I18n, error) {
	if defaultLang == "" {
		defaultLang = "ko"
	}

	catalogs, err := loadCatalogs()
	if err != nil {
		return nil, err
	}
	if _, ok := catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("no locale file for default language %q", defaultLang)
	}

	return &I18n{catalogs: catalogs, defaultLang: defaultLang}, nil
}

func loadCatalogs() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		file := path.Join("locales", entry.Name())
		data, err := localeFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}
		catalogs[strings.TrimSuffix(entry.Name(), ".json")] = messages
	}
	return catalogs, nil
}

// T formats key in lang, then in the default language. An unknown key is
// returned as is.
func (i *I18n) T(lang, key string, args ...interface{}) string {
	if lang == "" {
		lang = i.defaultLang
	}

	text, ok := i.catalogs[lang][key]
	if !ok {
		text, ok = i.catalogs[i.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (i *I18n) Has(lang, key string) bool {
	_, ok := i.catalogs[lang][key]
	return ok
}

func (i *I18n) DefaultLang() string {
	return i.defaultLang
}

// Languages lists the embedded locales in sorted order.
func (i *I18n) Languages() []string {
	langs := make([]string, 0, len(i.catalogs))
	for lang := range i.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
