package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// Supported lists the interface languages. The first is the default.
var Supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(Supported)

// ParseLanguage maps a BCP 47 tag such as "id-ID" or "en-GB" onto a
// supported language.
func ParseLanguage(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, &Error{Code: ErrCodeUnsupportedLanguage, Message: fmt.Sprintf("invalid language %q", s)}
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, &Error{Code: ErrCodeUnsupportedLanguage, Message: fmt.Sprintf("language %q is not supported", s)}
	}
	return Supported[idx], nil
}

// Language returns the stored language for role, or English.
func (a *App) Language(ctx context.Context, role store.Role) language.Tag {
	if a.prefs == nil {
		return Supported[0]
	}
	stored := a.prefs.LoadLanguage(ctx, role, Supported[0].String())
	tag, err := ParseLanguage(stored)
	if err != nil {
		slog.Warn("stored language preference ignored", "role", role, "value", stored)
		return Supported[0]
	}
	return tag
}

// SetLanguage stores the language for role and returns the matched tag.
func (a *App) SetLanguage(ctx context.Context, role store.Role, s string) (language.Tag, error) {
	tag, err := ParseLanguage(s)
	if err != nil {
		return language.Und, err
	}
	if a.prefs != nil {
		if err := a.prefs.SaveLanguage(ctx, role, tag.String()); err != nil {
			return language.Und, fmt.Errorf("save language: %w", err)
		}
	}
	return tag, nil
}

// ItemName returns the item's name in lang.
func ItemName(item ir.MenuItem, lang language.Tag) string {
	if lang == language.Indonesian && item.NameID != "" {
		return item.NameID
	}
	return item.NameEN
}
