// Package preferences persists per-browser calendar preferences: which
// row types and columns are hidden, and the colour theme. It replaces
// browser-local storage with a server-side store so every page render
// starts from the same state, keyed by the client id cookie.
package preferences

import "context"

// Preference keys for hide toggles. The vocabulary matches the historical
// calendarFilterPrefs map so existing exports stay readable.
const (
	HideWeekends      = "hideWeekends"
	HidePrep          = "hidePrep"
	HideHolidays      = "hideHolidays"
	HideHiatus        = "hideHiatus"
	HideShoot         = "hideShoot"
	HideColSequence   = "hideColSequence"
	HideColSecondUnit = "hideColSecondUnit"
)

// Keys lists every known hide key.
var Keys = []string{
	HideWeekends, HidePrep, HideHolidays, HideHiatus, HideShoot,
	HideColSequence, HideColSecondUnit,
}

// KnownKey reports whether key is a recognised hide toggle.
func KnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	// DefaultTheme applies when nothing has been saved.
	DefaultTheme = ThemeDark
)

// Toggle returns the other theme. Unknown values toggle to the default's
// opposite, as if the default had been saved.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Normalize maps unknown values to DefaultTheme.
func (t Theme) Normalize() Theme {
	if t == ThemeLight || t == ThemeDark {
		return t
	}
	return DefaultTheme
}

// Prefs is everything saved for one browser.
type Prefs struct {
	Hide  map[string]bool `json:"calendarFilterPrefs"`
	Theme Theme           `json:"theme"`
}

// Default returns prefs with every filter visible and the default theme.
func Default() Prefs {
	return Prefs{Hide: map[string]bool{}, Theme: DefaultTheme}
}

// Hidden reports whether the toggle for key is set.
func (p Prefs) Hidden(key string) bool {
	return p.Hide[key]
}

// With returns a copy of p with key set to hidden. p is not modified, so a
// Prefs value read from the store can be shared safely.
func (p Prefs) With(key string, hidden bool) Prefs {
	out := Prefs{Hide: make(map[string]bool, len(p.Hide)+1), Theme: p.Theme}
	for k, v := range p.Hide {
		if v {
			out.Hide[k] = true
		}
	}
	if hidden {
		out.Hide[key] = true
	} else {
		delete(out.Hide, key)
	}
	return out
}

// Change is one published prefs update. Origin names the browser tab that
// made it, when the request carried one, so that tab's own refresh socket
// can skip it.
type Change struct {
	Prefs  Prefs  `json:"prefs"`
	Origin string `json:"origin,omitempty"`
}

type originKey struct{}

// WithOrigin tags ctx with the tab that issued the current write.
func WithOrigin(ctx context.Context, origin string) context.Context {
	if origin == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the tab set by WithOrigin, or "".
func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
