package common

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Language is a supported message catalog.
type Language string

const (
	// LangEnglish is the diagnostic language and the fallback for missing keys.
	LangEnglish Language = "en"
	// LangPortuguese renders display messages in Brazilian Portuguese.
	LangPortuguese Language = "pt"
)

// Catalog keys for localizable messages.
const (
	MsgReadSectorFailed   = "failure.read_sector"
	MsgInvalidSector      = "failure.invalid_sector"
	MsgCadenceRejected    = "failure.cadence_rejected"
	MsgCadenceExhausted   = "failure.cadence_exhausted"
	MsgXAParameterErrors  = "warning.xa_parameter_errors"
	MsgUnknownLanguage    = "warning.unknown_language"
	MsgStreamSummaryXA    = "summary.xa_stream"
	MsgStreamSummaryVideo = "summary.video_stream"
	MsgScanSummary        = "summary.scan"
)

//go:embed locales/en.yaml locales/pt.yaml
var localeFS embed.FS

var (
	locales  = map[Language]map[string]string{}
	activeMu sync.RWMutex
	activeTr Translator
)

func init() {
	mustLoadLocale(LangEnglish, "locales/en.yaml")
	mustLoadLocale(LangPortuguese, "locales/pt.yaml")
	activeTr = NewTranslator(LangEnglish)
}

func mustLoadLocale(lang Language, file string) {
	data, err := localeFS.ReadFile(file)
	if err != nil {
		panic(fmt.Sprintf("common: load locale %s: %v", lang, err))
	}
	var parsed map[string]string
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		panic(fmt.Sprintf("common: parse locale %s: %v", lang, err))
	}
	locales[lang] = parsed
}

// Translator resolves catalog keys for one language.
type Translator struct {
	lang Language
	data map[string]string
}

// NewTranslator builds a translator for lang, falling back to English.
func NewTranslator(lang Language) Translator {
	data, ok := locales[lang]
	if !ok {
		lang = LangEnglish
		data = locales[LangEnglish]
	}
	return Translator{lang: lang, data: data}
}

// Lang returns the language actually in use.
func (t Translator) Lang() Language {
	return t.lang
}

// T returns the raw text for key. Unknown keys are returned unchanged.
func (t Translator) T(key string) string {
	if val, ok := t.data[key]; ok {
		return val
	}
	if t.lang != LangEnglish {
		if val, ok := locales[LangEnglish][key]; ok {
			return val
		}
	}
	return key
}

// Format returns the text for key formatted with args.
func (t Translator) Format(key string, args ...interface{}) string {
	text := t.T(key)
	if len(args) == 0 {
		return text
	}
	if text == key {
		parts := make([]string, 0, len(args)+1)
		parts = append(parts, key)
		for _, a := range args {
			parts = append(parts, fmt.Sprint(a))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprintf(text, args...)
}

// SetLanguage selects the display language used by Message.Localized.
// It reports false and keeps English when lang has no catalog.
func SetLanguage(lang string) bool {
	normalized := Language(strings.ToLower(strings.TrimSpace(lang)))
	if i := strings.IndexAny(string(normalized), "_-."); i > 0 {
		normalized = normalized[:i]
	}
	_, ok := locales[normalized]
	activeMu.Lock()
	activeTr = NewTranslator(normalized)
	activeMu.Unlock()
	return ok
}

func activeTranslator() Translator {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeTr
}

func englishTranslator() Translator {
	return Translator{lang: LangEnglish, data: locales[LangEnglish]}
}
