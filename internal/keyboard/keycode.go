package keyboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// KeycodeMap translates platform keycodes into ISO layout positions.
type KeycodeMap struct {
	positions map[int]Position
}

// NewKeycodeMap returns a keycode map holding a copy of positions.
func NewKeycodeMap(positions map[int]Position) *KeycodeMap {
	m := &KeycodeMap{positions: make(map[int]Position, len(positions))}
	for code, pos := range positions {
		m.positions[code] = pos
	}
	return m
}

// ReadKeycodeMap reads a CSV resource with the header "keycode,iso".
// Keycodes may be decimal or 0x prefixed hexadecimal.
func ReadKeycodeMap(r io.Reader) (*KeycodeMap, error) {
	records, err := readResource(r, "keycode", "iso")
	if err != nil {
		return nil, err
	}
	m := &KeycodeMap{positions: make(map[int]Position, len(records))}
	for _, rec := range records {
		code, err := strconv.ParseInt(rec.fields[0], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: keycode %q: %w", ErrInvalidResource, rec.line, rec.fields[0], err)
		}
		pos, err := ParsePosition(rec.fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidResource, rec.line, err)
		}
		if _, dup := m.positions[int(code)]; dup {
			return nil, fmt.Errorf("%w: line %d: keycode %d listed twice", ErrInvalidResource, rec.line, code)
		}
		m.positions[int(code)] = pos
	}
	return m, nil
}

// MustReadKeycodeMap is like ReadKeycodeMap but panics on error.
// Use only for embedded resources.
func MustReadKeycodeMap(data string) *KeycodeMap {
	m, err := ReadKeycodeMap(strings.NewReader(data))
	if err != nil {
		panic(err)
	}
	return m
}

// Position returns the position of a keycode.
func (m *KeycodeMap) Position(keycode int) (Position, error) {
	if pos, ok := m.positions[keycode]; ok {
		return pos, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKeycode, keycode)
}

// HasKeycode returns true if the keycode has a position.
func (m *KeycodeMap) HasKeycode(keycode int) bool {
	_, ok := m.positions[keycode]
	return ok
}

// Keycodes returns every mapped keycode in ascending order.
func (m *KeycodeMap) Keycodes() []int {
	out := make([]int, 0, len(m.positions))
	for code := range m.positions {
		out = append(out, code)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of mapped keycodes.
func (m *KeycodeMap) Len() int {
	return len(m.positions)
}

type record struct {
	line   int
	fields []string
}

// readResource reads a CSV resource, checks its header and returns the
// remaining records with their fields trimmed.
func readResource(r io.Reader, header ...string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.Comment = '#'

	first, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty resource", ErrInvalidResource)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidResource, err)
	}
	for i, h := range header {
		if strings.TrimSpace(first[i]) != h {
			return nil, fmt.Errorf("%w: header is %q, want %q",
				ErrInvalidResource, strings.Join(first, ","), strings.Join(header, ","))
		}
	}

	var records []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResource, err)
		}
		line, _ := cr.FieldPos(0)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}
