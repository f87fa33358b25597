package keyboard

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Platform identifies the operating system a layout belongs to.
type Platform string

// Supported platforms.
const (
	PlatformAndroid  Platform = "android"
	PlatformChromeOS Platform = "chromeos"
	PlatformOSX      Platform = "osx"
	PlatformWindows  Platform = "windows"
)

// Platforms returns every supported platform in name order.
func Platforms() []Platform {
	return []Platform{PlatformAndroid, PlatformChromeOS, PlatformOSX, PlatformWindows}
}

// ParsePlatform parses a platform name.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Platforms(), p) {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}

// String returns the platform name.
func (p Platform) String() string {
	return string(p)
}

// keyboardSeparator joins the locale and the keyboard extension of an id.
const keyboardSeparator = "-t-k0-"

// ID identifies a keyboard: its locale, its platform and the attributes
// that distinguish it from other keyboards of the same locale.
type ID struct {
	Locale     language.Tag
	Platform   Platform
	Attributes []string
}

// NewID returns a keyboard id. Attributes are lower cased.
func NewID(locale language.Tag, platform Platform, attributes ...string) ID {
	attrs := make([]string, 0, len(attributes))
	for _, a := range attributes {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			attrs = append(attrs, a)
		}
	}
	return ID{Locale: locale, Platform: platform, Attributes: attrs}
}

// String returns the id in the form {locale}-t-k0-{platform}[-{attribute}...],
// e.g. "de-CH-t-k0-windows-extended".
func (id ID) String() string {
	var b strings.Builder
	b.WriteString(id.Locale.String())
	b.WriteString(keyboardSeparator)
	b.WriteString(string(id.Platform))
	for _, a := range id.Attributes {
		b.WriteByte('-')
		b.WriteString(a)
	}
	return b.String()
}

// Equal returns true if both ids are the same.
func (id ID) Equal(o ID) bool {
	return id.String() == o.String()
}

// Compare orders ids by their string form.
func (id ID) Compare(o ID) int {
	return strings.Compare(id.String(), o.String())
}

// ParseID parses the string form of a keyboard id.
func ParseID(s string) (ID, error) {
	localePart, rest, ok := strings.Cut(strings.TrimSpace(s), keyboardSeparator)
	if !ok {
		return ID{}, fmt.Errorf("%w: %q has no %q extension", ErrInvalidKeyboardID, s, keyboardSeparator)
	}
	locale, err := language.Parse(localePart)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %w", ErrInvalidKeyboardID, s, err)
	}
	fields := strings.Split(rest, "-")
	platform, err := ParsePlatform(fields[0])
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %w", ErrInvalidKeyboardID, s, err)
	}
	return NewID(locale, platform, fields[1:]...), nil
}
