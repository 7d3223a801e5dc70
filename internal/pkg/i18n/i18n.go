package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

// Translator resolves message IDs against the embedded locale files.
type Translator struct {
	bundle        *i18n.Bundle
	matcher       language.Matcher
	supported     []string
	defaultLocale string
}

// New loads all locale files. defLocale is used when a request names no
// supported language.
func New(defLocale string) (*Translator, error) {
	def, err := language.Parse(defLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: invalid default locale %q: %w", defLocale, err)
	}

	bundle := i18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	// The default goes first so that it wins on a failed match.
	tags := []language.Tag{def}
	for _, tag := range bundle.LanguageTags() {
		if tag != def {
			tags = append(tags, tag)
		}
	}
	supported := make([]string, len(tags))
	for i, tag := range tags {
		supported[i] = tag.String()
	}

	slog.Debug("i18n: locale files loaded", "count", len(entries), "default", defLocale)
	return &Translator{
		bundle:        bundle,
		matcher:       language.NewMatcher(tags),
		supported:     supported,
		defaultLocale: def.String(),
	}, nil
}

// Match picks the best supported locale for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLocale
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLocale
	}
	return t.supported[idx]
}

// Supported lists the loaded locales, default first.
func (t *Translator) Supported() []string {
	return t.supported
}

// WithLocale returns a new context carrying the given locale string (e.g. "es", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale from the context, or "" if unset.
func LocaleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// T translates a message ID using the locale from the context. Unknown IDs
// come back unchanged.
func (t *Translator) T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	lang := LocaleFromContext(ctx)
	if lang == "" {
		lang = t.defaultLocale
	}
	l := i18n.NewLocalizer(t.bundle, lang, t.defaultLocale)

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
