// Package translator provides the localized message catalog for
// user-facing text, currently the verification mail subject and body.
package translator

import (
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
)

// Message keys known to the catalog.
const (
	KeyVerifyEmailSubject = "verify_email_subject"
	KeyVerifyEmailBody    = "verify_email_body"
)

type message struct {
	key  string
	text string
}

var catalogs = map[string][]message{
	"en": {
		{KeyVerifyEmailSubject, "Verify your email address"},
		{KeyVerifyEmailBody, "Hi,\n\nPlease verify your email address by opening the link below:\n\n{0}\n\nIf you did not request this, you can safely ignore this message."},
	},
	"es": {
		{KeyVerifyEmailSubject, "Verifica tu dirección de correo"},
		{KeyVerifyEmailBody, "Hola,\n\nPor favor verifica tu dirección de correo abriendo el siguiente enlace:\n\n{0}\n\nSi no has solicitado esto, puedes ignorar este mensaje."},
	},
}

// Translator wraps a universal translator preloaded with the en and es
// catalogs.
type Translator struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator
}

// New builds a Translator with the given fallback locale. The fallback
// must be one of the bundled locales.
func New(fallbackLocale string) (*Translator, error) {
	uni := ut.New(en.New(), en.New(), es.New())

	for locale, messages := range catalogs {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("locale %q not registered", locale)
		}
		for _, m := range messages {
			if err := trans.Add(m.key, m.text, false); err != nil {
				return nil, fmt.Errorf("failed to add message %q to locale %q: %w", m.key, locale, err)
			}
		}
	}

	fallback, found := uni.GetTranslator(fallbackLocale)
	if !found {
		return nil, fmt.Errorf("fallback locale %q not registered", fallbackLocale)
	}

	return &Translator{uni: uni, fallback: fallback}, nil
}

// T translates a message key in the given locale, substituting {0}-style
// placeholders with params. Unknown locales fall back to the configured
// default; unknown keys are an error.
func (t *Translator) T(locale, key string, params ...string) (string, error) {
	trans, found := t.uni.GetTranslator(locale)
	if !found {
		trans = t.fallback
	}
	return trans.T(key, params...)
}
