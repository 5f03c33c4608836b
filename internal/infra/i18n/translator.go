package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

type Translator struct {
	lang         string
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{lang: langCode, translations: translations}, nil
}

func (t *Translator) Lang() string { return t.lang }

// T translates key, formatting args into the localized template when given.
// Unknown keys fall back to the key itself.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one translator per supported locale.
type Bundle struct {
	byLang map[string]*Translator
}

func NewBundle(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{byLang: map[string]*Translator{}}
	for _, lang := range []string{LangEnglish, LangArabic} {
		tr, err := NewTranslator(fsys, lang)
		if err != nil {
			return nil, err
		}
		b.byLang[lang] = tr
	}
	return b, nil
}

// For returns the translator for lang, defaulting to English.
func (b *Bundle) For(lang string) *Translator {
	if tr, ok := b.byLang[lang]; ok {
		return tr
	}
	return b.byLang[LangEnglish]
}
