package keyboard

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// KeyboardIDMap resolves platform layout names into keyboard ids.
type KeyboardIDMap struct {
	platform Platform
	ids      map[string][]ID
}

// ReadKeyboardIDMap reads a CSV resource with the header
// "name,locale,attributes". Attributes are space separated; a name may
// appear on several lines to publish the layout under several ids.
func ReadKeyboardIDMap(r io.Reader, platform Platform) (*KeyboardIDMap, error) {
	records, err := readResource(r, "name", "locale", "attributes")
	if err != nil {
		return nil, err
	}
	m := &KeyboardIDMap{platform: platform, ids: make(map[string][]ID)}
	for _, rec := range records {
		name := rec.fields[0]
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty layout name", ErrInvalidResource, rec.line)
		}
		locale, err := language.Parse(rec.fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: locale %q: %w", ErrInvalidResource, rec.line, rec.fields[1], err)
		}
		id := NewID(locale, platform, strings.Fields(rec.fields[2])...)
		if !slices.ContainsFunc(m.ids[name], id.Equal) {
			m.ids[name] = append(m.ids[name], id)
		}
	}
	return m, nil
}

// MustReadKeyboardIDMap is like ReadKeyboardIDMap but panics on error.
// Use only for embedded resources.
func MustReadKeyboardIDMap(data string, platform Platform) *KeyboardIDMap {
	m, err := ReadKeyboardIDMap(strings.NewReader(data), platform)
	if err != nil {
		panic(err)
	}
	return m
}

// Platform returns the platform of every id in the map.
func (m *KeyboardIDMap) Platform() Platform {
	return m.platform
}

// IDs returns the keyboard ids of a layout name.
func (m *KeyboardIDMap) IDs(name string) ([]ID, error) {
	ids, ok := m.ids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownKeyboard, name, m.platform)
	}
	return slices.Clone(ids), nil
}

// Names returns every known layout name, sorted.
func (m *KeyboardIDMap) Names() []string {
	out := make([]string, 0, len(m.ids))
	for name := range m.ids {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
