// Package i18n renders user-facing editor messages from embedded TOML catalogs.
package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"wikitrans/internal/ports"
)

//go:embed active.*.toml
var localeFS embed.FS

var _ ports.Messages = (*Catalog)(nil)

// Catalog wraps a go-i18n bundle.
type Catalog struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *slog.Logger
}

// New loads the embedded catalogs. An unparsable defaultLocale falls back
// to English.
func New(defaultLocale string, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Warn("i18n: load catalog", "file", file, "err", err)
		}
	}
	return &Catalog{bundle: bundle, defaultLanguage: tag, log: log}
}

// T renders key for locale, then the default locale. It returns key when
// neither has the message.
func (c *Catalog) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	var languages []string
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, c.defaultLanguage.String())

	msg, err := i18n.NewLocalizer(c.bundle, languages...).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		c.log.Debug("i18n: localize", "key", key, "locales", languages, "err", err)
		return key
	}
	return msg
}
