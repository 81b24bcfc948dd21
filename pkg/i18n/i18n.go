package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message identifiers shared with the locale files.
const (
	MsgWaitingForClass   = "waiting_for_class"
	MsgPreRoutinePending = "pre_routine_pending"
	MsgWarningCount      = "warning_count"
	MsgPointsBlocked     = "points_blocked"
	MsgHeldPointsPromise = "held_points_promise"
	MsgPINChangeRequired = "pin_change_required"
)

// Translator resolves user-facing notices for a preferred language.
type Translator struct {
	bundle   *goi18n.Bundle
	fallback string
}

// New loads every embedded locale with defaultLang as the fallback.
func New(defaultLang string) (*Translator, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", defaultLang, err)
	}

	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}

	return &Translator{bundle: bundle, fallback: tag.String()}, nil
}

// T renders messageID for the accept-language string, falling back to the
// default language and finally to the id itself.
func (t *Translator) T(acceptLanguage, messageID string, data map[string]interface{}) string {
	if t == nil {
		return messageID
	}
	localizer := goi18n.NewLocalizer(t.bundle, acceptLanguage, t.fallback)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil {
		return messageID
	}
	return msg
}
