// Package i18n renders user-facing messages from the embedded catalogs.
// Message ids are the stable error codes of the domain package.
package i18n

import (
	"embed"
	"log"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Supported lists the catalog languages, in matcher preference order.
var Supported = []language.Tag{language.Korean, language.English}

type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	matcher         language.Matcher
}

// NewTranslator loads the embedded catalogs. An unparsable default locale
// falls back to English.
func NewTranslator(defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range []string{"active.en.toml", "active.ko.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Printf("[i18n] failed to load %s: %v", file, err)
		}
	}
	return &Translator{bundle: bundle, defaultLanguage: tag, matcher: language.NewMatcher(Supported)}
}

// Match picks the best supported locale for an Accept-Language header,
// or the default locale when the header is empty or unusable.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLanguage.String()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLanguage.String()
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLanguage.String()
	}
	return Supported[idx].String()
}

// T renders key for locale. Missing keys fall back to the default locale,
// then English, then to fallback.
func (t *Translator) T(locale, key, fallback string, data map[string]any) string {
	if key == "" {
		return fallback
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String(), language.English.String())

	msg, err := i18n.NewLocalizer(t.bundle, languages...).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return fallback
	}
	return msg
}
