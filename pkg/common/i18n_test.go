package common

import (
	"bytes"
	"log"
	"os"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range locales[LangEnglish] {
		if _, ok := locales[LangPortuguese][key]; !ok {
			t.Errorf("pt catalog is missing %q", key)
		}
	}
	for key := range locales[LangPortuguese] {
		if _, ok := locales[LangEnglish][key]; !ok {
			t.Errorf("en catalog is missing %q", key)
		}
	}
}

func TestTranslator(t *testing.T) {
	tests := []struct {
		name string
		lang Language
		key  string
		args []interface{}
		want string
	}{
		{"english", LangEnglish, MsgScanSummary, []interface{}{1, 2, 3}, "1 XA stream(s), 2 video stream(s), 3 failure(s)"},
		{"portuguese", LangPortuguese, MsgScanSummary, []interface{}{1, 2, 3}, "1 fluxo(s) XA, 2 fluxo(s) de vídeo, 3 falha(s)"},
		{"unknown language", Language("de"), MsgReadSectorFailed, []interface{}{9}, "Failed to read sector 9"},
		{"unknown key", LangEnglish, "no.such.key", []interface{}{4, "x"}, "no.such.key 4 x"},
		{"unknown key no args", LangEnglish, "no.such.key", nil, "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTranslator(tt.lang).Format(tt.key, tt.args...)
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetLanguage(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	tests := []struct {
		input string
		ok    bool
		lang  Language
	}{
		{"pt", true, LangPortuguese},
		{"PT-br", true, LangPortuguese},
		{"en_US.UTF-8", true, LangEnglish},
		{"klingon", false, LangEnglish},
	}
	for _, tt := range tests {
		if ok := SetLanguage(tt.input); ok != tt.ok {
			t.Errorf("SetLanguage(%q) = %v, want %v", tt.input, ok, tt.ok)
		}
		if got := activeTranslator().Lang(); got != tt.lang {
			t.Errorf("after SetLanguage(%q) Lang() = %q, want %q", tt.input, got, tt.lang)
		}
	}
}
