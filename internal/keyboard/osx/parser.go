package osx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/cldrtools/keyboard/internal/keyboard"
	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// Parse errors.
var (
	ErrNoLayout   = errors.New("no layout for hardware type 0")
	ErrNoMapping  = errors.New("missing modifier map or key map set")
	ErrNoKeyMap   = errors.New("missing key map")
	ErrNoName     = errors.New("keyboard has no name")
	ErrCyclicBase = errors.New("key map inherits from itself")
)

type xmlKeyboard struct {
	XMLName      xml.Name         `xml:"keyboard"`
	Name         string           `xml:"name,attr"`
	Layouts      []xmlLayout      `xml:"layouts>layout"`
	ModifierMaps []xmlModifierMap `xml:"modifierMap"`
	KeyMapSets   []xmlKeyMapSet   `xml:"keyMapSet"`
	Actions      []xmlAction      `xml:"actions>action"`
	Terminators  []xmlWhen        `xml:"terminators>when"`
}

type xmlLayout struct {
	First     int    `xml:"first,attr"`
	Last      int    `xml:"last,attr"`
	Modifiers string `xml:"modifiers,attr"`
	MapSet    string `xml:"mapSet,attr"`
}

type xmlModifierMap struct {
	ID      string            `xml:"id,attr"`
	Selects []xmlKeyMapSelect `xml:"keyMapSelect"`
}

type xmlKeyMapSelect struct {
	MapIndex  int           `xml:"mapIndex,attr"`
	Modifiers []xmlModifier `xml:"modifier"`
}

type xmlModifier struct {
	Keys string `xml:"keys,attr"`
}

type xmlKeyMapSet struct {
	ID      string      `xml:"id,attr"`
	KeyMaps []xmlKeyMap `xml:"keyMap"`
}

type xmlKeyMap struct {
	Index      int      `xml:"index,attr"`
	BaseMapSet string   `xml:"baseMapSet,attr"`
	BaseIndex  *int     `xml:"baseIndex,attr"`
	Keys       []xmlKey `xml:"key"`
}

type xmlKey struct {
	Code   int        `xml:"code,attr"`
	Output *string    `xml:"output,attr"`
	Action string     `xml:"action,attr"`
	Inline *xmlAction `xml:"action"`
}

type xmlAction struct {
	ID    string    `xml:"id,attr"`
	Whens []xmlWhen `xml:"when"`
}

type xmlWhen struct {
	State  string  `xml:"state,attr"`
	Output *string `xml:"output,attr"`
	Next   string  `xml:"next,attr"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithKeycodeMap replaces the embedded keycode table.
func WithKeycodeMap(m *keyboard.KeycodeMap) Option {
	return func(p *Parser) {
		if m != nil {
			p.keycodes = m
		}
	}
}

// WithKeyboardIDMap replaces the embedded layout name table.
func WithKeyboardIDMap(m *keyboard.KeyboardIDMap) Option {
	return func(p *Parser) {
		if m != nil {
			p.ids = m
		}
	}
}

// Parser reads .keylayout files. A Parser is safe for concurrent use.
type Parser struct {
	keycodes *keyboard.KeycodeMap
	ids      *keyboard.KeyboardIDMap
}

// NewParser returns a parser using the embedded tables unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{keycodes: KeycodeMap, ids: KeyboardIDMap}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a layout with the default parser.
func Parse(r io.Reader, source string) ([]*keyboard.Keyboard, error) {
	return NewParser().Parse(r, source)
}

// Parse reads a .keylayout document and returns one keyboard per id the
// layout is published under. source names the input in errors.
func (p *Parser) Parse(r io.Reader, source string) ([]*keyboard.Keyboard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	var doc xmlKeyboard
	dec := xml.NewDecoder(bytes.NewReader(escapeControls(data)))
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&doc); err != nil {
		pe := &keyboard.ParseError{Path: source, Message: err.Error(), Err: err}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			pe.Line = syntaxErr.Line
		}
		return nil, pe
	}

	l := &layoutReader{parser: p, doc: &doc, builder: keyboard.NewBuilder()}
	if err := l.read(); err != nil {
		return nil, &keyboard.ParseError{Path: source, Message: err.Error(), Err: err}
	}
	keyboards, err := l.builder.Build()
	if err != nil {
		return nil, &keyboard.ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return keyboards, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// layoutReader holds the state of a single Parse call.
type layoutReader struct {
	parser      *Parser
	doc         *xmlKeyboard
	builder     *keyboard.Builder
	actions     map[string]xmlAction
	terminators map[string]string
}

func (l *layoutReader) read() error {
	name := strings.TrimSpace(l.doc.Name)
	if name == "" {
		return ErrNoName
	}
	l.builder.AddName(name)
	ids, err := l.parser.ids.IDs(name)
	if err != nil {
		return err
	}
	l.builder.AddKeyboardIDs(ids...)

	l.actions = make(map[string]xmlAction, len(l.doc.Actions))
	for _, a := range l.doc.Actions {
		l.actions[a.ID] = a
	}
	l.terminators = make(map[string]string, len(l.doc.Terminators))
	for _, t := range l.doc.Terminators {
		if t.Output != nil {
			l.terminators[t.State] = restoreControls(*t.Output)
		}
	}

	// Transforms first: key outputs that start a sequence are flagged.
	if err := l.readTransforms(); err != nil {
		return err
	}

	var layout *xmlLayout
	for i := range l.doc.Layouts {
		if l.doc.Layouts[i].First == 0 {
			layout = &l.doc.Layouts[i]
			break
		}
	}
	if layout == nil {
		return ErrNoLayout
	}
	modMap := l.modifierMap(layout.Modifiers)
	if modMap == nil {
		return fmt.Errorf("%w: modifierMap %q", ErrNoMapping, layout.Modifiers)
	}
	if l.keyMapSet(layout.MapSet) == nil {
		return fmt.Errorf("%w: keyMapSet %q", ErrNoMapping, layout.MapSet)
	}

	for _, sel := range modMap.Selects {
		combinations := make([]modifier.Combination, 0, len(sel.Modifiers))
		for _, m := range sel.Modifiers {
			c, err := ParseModifiers(m.Keys)
			if err != nil {
				return fmt.Errorf("keyMapSelect %d: %w", sel.MapIndex, err)
			}
			combinations = append(combinations, c)
		}
		keys, err := l.resolveKeys(layout.MapSet, sel.MapIndex, 0)
		if err != nil {
			return err
		}
		if err := l.readKeys(combinations, keys); err != nil {
			return fmt.Errorf("keyMap %d: %w", sel.MapIndex, err)
		}
	}
	return nil
}

func (l *layoutReader) modifierMap(id string) *xmlModifierMap {
	for i := range l.doc.ModifierMaps {
		if l.doc.ModifierMaps[i].ID == id {
			return &l.doc.ModifierMaps[i]
		}
	}
	return nil
}

func (l *layoutReader) keyMapSet(id string) *xmlKeyMapSet {
	for i := range l.doc.KeyMapSets {
		if l.doc.KeyMapSets[i].ID == id {
			return &l.doc.KeyMapSets[i]
		}
	}
	return nil
}

// maxBaseDepth bounds baseMapSet chains.
const maxBaseDepth = 8

// resolveKeys returns the keys of a key map by code, with the keys of its
// base map underneath.
func (l *layoutReader) resolveKeys(setID string, index, depth int) (map[int]xmlKey, error) {
	if depth > maxBaseDepth {
		return nil, fmt.Errorf("%w: keyMapSet %q index %d", ErrCyclicBase, setID, index)
	}
	set := l.keyMapSet(setID)
	if set == nil {
		return nil, fmt.Errorf("%w: keyMapSet %q", ErrNoMapping, setID)
	}
	var km *xmlKeyMap
	for i := range set.KeyMaps {
		if set.KeyMaps[i].Index == index {
			km = &set.KeyMaps[i]
			break
		}
	}
	if km == nil {
		return nil, fmt.Errorf("%w: keyMapSet %q index %d", ErrNoKeyMap, setID, index)
	}

	keys := make(map[int]xmlKey)
	if km.BaseMapSet != "" && km.BaseIndex != nil {
		base, err := l.resolveKeys(km.BaseMapSet, *km.BaseIndex, depth+1)
		if err != nil {
			return nil, err
		}
		for code, k := range base {
			keys[code] = k
		}
	}
	for _, k := range km.Keys {
		keys[k.Code] = k
	}
	return keys, nil
}

// readKeys adds the outputs of resolved keys under every combination.
func (l *layoutReader) readKeys(combinations []modifier.Combination, keys map[int]xmlKey) error {
	codes := make([]int, 0, len(keys))
	for code := range keys {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		if !l.parser.keycodes.HasKeycode(code) {
			continue
		}
		pos, err := l.parser.keycodes.Position(code)
		if err != nil {
			return err
		}
		output, dead, ok := l.keyOutput(keys[code])
		if !ok {
			continue
		}
		cm := keyboard.NewCharacterMap(pos, output)
		if !dead && l.builder.StartsTransform(output) {
			cm = cm.MarkTransformNo()
		}
		if err := l.builder.AddCharacterMaps(combinations, cm); err != nil {
			return err
		}
	}
	return nil
}

// keyOutput returns what a key types and whether it is a dead key.
func (l *layoutReader) keyOutput(k xmlKey) (output string, dead, ok bool) {
	if k.Output != nil {
		out := restoreControls(*k.Output)
		return out, false, out != ""
	}
	action, found := l.action(k)
	if !found {
		return "", false, false
	}
	for _, w := range action.Whens {
		if w.State != "none" {
			continue
		}
		if w.Output != nil {
			out := restoreControls(*w.Output)
			return out, false, out != ""
		}
		if w.Next != "" {
			out, ok := l.terminators[w.Next]
			return out, true, ok && out != ""
		}
	}
	return "", false, false
}

func (l *layoutReader) action(k xmlKey) (xmlAction, bool) {
	if k.Inline != nil {
		return *k.Inline, true
	}
	if k.Action == "" {
		return xmlAction{}, false
	}
	a, ok := l.actions[k.Action]
	return a, ok
}

// readTransforms records a transform for every action output reached from
// a dead key state whose terminator is known.
func (l *layoutReader) readTransforms() error {
	for _, a := range l.doc.Actions {
		var base string
		for _, w := range a.Whens {
			if w.State == "none" && w.Output != nil {
				base = restoreControls(*w.Output)
			}
		}
		if base == "" {
			continue
		}
		for _, w := range a.Whens {
			if w.State == "none" || w.Output == nil {
				continue
			}
			dead, ok := l.terminators[w.State]
			if !ok || dead == "" {
				continue
			}
			if err := l.builder.AddTransform(dead+base, restoreControls(*w.Output)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Character references to C0 controls are not allowed in XML 1.0, but
// layouts use them for keys such as backspace. They are shifted into a
// supplementary private use plane while decoding and shifted back after.
const controlShift = 0x100000

var (
	charRefPattern    = regexp.MustCompile(`&#(x[0-9A-Fa-f]+|[0-9]+);`)
	xmlVersionPattern = regexp.MustCompile(`^(\s*<\?xml[^>]*?version\s*=\s*["'])1\.1(["'])`)
)

func escapeControls(data []byte) []byte {
	data = xmlVersionPattern.ReplaceAll(data, []byte("${1}1.0${2}"))
	return charRefPattern.ReplaceAllFunc(data, func(ref []byte) []byte {
		digits := string(ref[2 : len(ref)-1])
		base := 10
		if digits[0] == 'x' {
			digits, base = digits[1:], 16
		}
		code, err := strconv.ParseInt(digits, base, 32)
		if err != nil || code >= 0x20 || code == '\t' || code == '\n' || code == '\r' {
			return ref
		}
		return []byte(fmt.Sprintf("&#x%X;", controlShift+code))
	})
}

func restoreControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= controlShift && r < controlShift+0x20 {
			return r - controlShift
		}
		return r
	}, s)
}
