package i18n_test

import (
	"strings"
	"testing"

	"telegram-merchant-pay/internal/infra/i18n"
)

func newBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.NewBundle(i18n.LocalesFS)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	return b
}

func TestBundle(t *testing.T) {
	b := newBundle(t)

	t.Run("every locale carries every key", func(t *testing.T) {
		keys := []string{
			"lang_button", "choose_language", "welcome",
			"menu_register", "menu_create_payment", "menu_dashboard", "menu_help",
			"ask_business_name", "ask_business_phone", "ask_amount", "ask_description",
			"err_name", "err_phone", "err_amount", "err_generic",
			"register_first", "business_registered", "payment_created",
			"payment_link_caption", "dashboard", "help",
			"settle_success", "settle_failed",
		}
		for _, lang := range []string{i18n.LangEnglish, i18n.LangArabic} {
			tr := b.For(lang)
			for _, key := range keys {
				if tr.T(key) == key {
					t.Errorf("locale %s is missing %q", lang, key)
				}
			}
		}
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		if got := b.For("fr").Lang(); got != i18n.LangEnglish {
			t.Errorf("expected english fallback, got %q", got)
		}
		if got := b.For("").Lang(); got != i18n.LangEnglish {
			t.Errorf("expected english fallback for empty lang, got %q", got)
		}
	})

	t.Run("menu labels differ between locales", func(t *testing.T) {
		en := b.For(i18n.LangEnglish)
		ar := b.For(i18n.LangArabic)
		for _, key := range []string{"menu_register", "menu_create_payment", "menu_dashboard", "menu_help", "lang_button"} {
			if en.T(key) == ar.T(key) {
				t.Errorf("key %q has identical labels in both locales", key)
			}
		}
	})
}

func TestTranslator(t *testing.T) {
	b := newBundle(t)
	tr := b.For(i18n.LangEnglish)

	t.Run("formats arguments", func(t *testing.T) {
		got := tr.T("business_registered", "Acme Foods", "+966501234567")
		if !strings.Contains(got, "Acme Foods") || !strings.Contains(got, "+966501234567") {
			t.Errorf("expected both arguments in %q", got)
		}
	})

	t.Run("unknown key falls back to the key", func(t *testing.T) {
		if got := tr.T("no_such_key"); got != "no_such_key" {
			t.Errorf("expected key echo, got %q", got)
		}
	})
}
