package i18n_test

import (
	"testing"

	"github.com/skemalib/skema/i18n"
)

type upperTranslator struct{}

func (upperTranslator) Message(code string, data map[string]string) string {
	return "!" + code
}

func TestBuiltinDictionary(t *testing.T) {
	if got := i18n.T("required", nil); got != "required property missing" {
		t.Fatalf("unexpected en message: %q", got)
	}
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	if got := i18n.T("required", nil); got != "必須プロパティが不足しています" {
		t.Fatalf("unexpected ja message: %q", got)
	}
}

func TestUnknownCodeFallsBackToCode(t *testing.T) {
	if got := i18n.T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

func TestCustomTranslator(t *testing.T) {
	i18n.SetTranslator(upperTranslator{})
	defer i18n.SetTranslator(nil)
	if got := i18n.T("too_small", nil); got != "!too_small" {
		t.Fatalf("custom translator not applied: %q", got)
	}
}
