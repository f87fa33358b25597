package windows

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cldrtools/keyboard/internal/keyboard"
	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// Parse errors.
var (
	ErrMissingSection        = errors.New("missing section")
	ErrInvalidLine           = errors.New("invalid line")
	ErrMissingLigature       = errors.New("missing ligature")
	ErrUnsupportedShiftState = errors.New("unsupported shift state")
	ErrInvalidCapsLock       = errors.New("invalid caps lock value")
)

// Option configures a Parser.
type Option func(*Parser)

// WithKeycodeMap replaces the embedded scan code table.
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

// Parser reads .klc files. A Parser is safe for concurrent use.
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

// Parse reads a .klc document and returns one keyboard per id the layout is
// published under. source names the input in errors.
func (p *Parser) Parse(r io.Reader, source string) ([]*keyboard.Keyboard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	text, err := decode(data)
	if err != nil {
		return nil, &keyboard.ParseError{Path: source, Message: err.Error(), Err: err}
	}

	k := &klcReader{
		parser:     p,
		source:     source,
		sections:   splitSections(text),
		builder:    keyboard.NewBuilder(),
		states:     make(map[int][]modifier.Combination),
		shiftState: -1,
		ligatures:  make(map[ligatureKey]string),
	}
	if err := k.read(); err != nil {
		return nil, err
	}
	keyboards, err := k.builder.Build()
	if err != nil {
		return nil, &keyboard.ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return keyboards, nil
}

// decode converts the file to a string. Files with a byte order mark are
// decoded accordingly; files without one are read as UTF-16LE when they
// look like it and as UTF-8 otherwise.
func decode(data []byte) (string, error) {
	var t transform.Transformer = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if len(data) >= 2 && data[0] != 0 && data[1] == 0 {
		t = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	}
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

type sectionLine struct {
	num    int
	fields []string
}

type section struct {
	name  string
	line  int
	args  []string
	lines []sectionLine
}

var sectionNames = map[string]bool{
	"KBD": true, "COPYRIGHT": true, "COMPANY": true, "LOCALENAME": true, "LOCALEID": true,
	"VERSION": true, "ATTRIBUTES": true, "SHIFTSTATE": true, "LAYOUT": true, "LIGATURE": true,
	"DEADKEY": true, "KEYNAME": true, "KEYNAME_EXT": true, "KEYNAME_DEAD": true,
	"DESCRIPTIONS": true, "LANGUAGENAMES": true, "ENDKBD": true,
}

// splitSections groups the non-empty lines of the file under their section
// keywords. Comments are removed.
func splitSections(text string) []*section {
	var sections []*section
	var current *section
	for i, raw := range strings.Split(text, "\n") {
		if idx := strings.Index(raw, "//"); idx >= 0 {
			raw = raw[:idx]
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		if sectionNames[fields[0]] {
			current = &section{name: fields[0], line: i + 1, args: fields[1:]}
			sections = append(sections, current)
			continue
		}
		if current != nil {
			current.lines = append(current.lines, sectionLine{num: i + 1, fields: fields})
		}
	}
	return sections
}

type ligatureKey struct {
	virtualKey string
	column     int
}

// klcReader holds the state of a single Parse call.
type klcReader struct {
	parser   *Parser
	source   string
	sections []*section
	builder  *keyboard.Builder

	// states maps a shift state to its combinations; order lists the shift
	// states in column order.
	states     map[int][]modifier.Combination
	order      []int
	shiftState int
	ligatures  map[ligatureKey]string
}

func (k *klcReader) errorAt(line int, err error) error {
	return &keyboard.ParseError{Path: k.source, Line: line, Message: err.Error(), Err: err}
}

func (k *klcReader) section(name string) *section {
	for _, s := range k.sections {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (k *klcReader) required(name string) (*section, error) {
	if s := k.section(name); s != nil {
		return s, nil
	}
	return nil, k.errorAt(0, fmt.Errorf("%w: %s", ErrMissingSection, name))
}

func (k *klcReader) read() error {
	if err := k.readNameAndIDs(); err != nil {
		return err
	}
	if err := k.readShiftStates(); err != nil {
		return err
	}
	if err := k.readLigatures(); err != nil {
		return err
	}
	// Dead keys come before the layout so that outputs starting a transform
	// can be flagged.
	if err := k.readDeadKeys(); err != nil {
		return err
	}
	return k.readLayout()
}

func (k *klcReader) readNameAndIDs() error {
	s, err := k.required("DESCRIPTIONS")
	if err != nil {
		return err
	}
	if len(s.lines) == 0 || len(s.lines[0].fields) < 2 {
		return k.errorAt(s.line, fmt.Errorf("%w: DESCRIPTIONS has no name", ErrInvalidLine))
	}
	// "0409    Canadian French - Custom": a language id, then the name.
	first := s.lines[0]
	name := strings.Join(first.fields[1:], " ")
	name = strings.TrimSpace(strings.ReplaceAll(name, " - Custom", ""))
	if name == "" {
		return k.errorAt(first.num, fmt.Errorf("%w: empty name", ErrInvalidLine))
	}
	k.builder.AddName(name)
	ids, err := k.parser.ids.IDs(name)
	if err != nil {
		return k.errorAt(first.num, err)
	}
	k.builder.AddKeyboardIDs(ids...)
	return nil
}

// Shift state bits.
const (
	stateShift = 1 << iota
	stateCtrl
	stateAlt
)

var shiftCombination = modifier.OfOnKeys(modifier.NewKeySet(modifier.Shift))

func (k *klcReader) readShiftStates() error {
	s, err := k.required("SHIFTSTATE")
	if err != nil {
		return err
	}
	for _, line := range s.lines {
		state, err := strconv.Atoi(line.fields[0])
		if err != nil {
			return k.errorAt(line.num, fmt.Errorf("%w: shift state %q", ErrInvalidLine, line.fields[0]))
		}
		if state < 0 || state > stateShift|stateCtrl|stateAlt {
			return k.errorAt(line.num, fmt.Errorf("%w: %d", ErrUnsupportedShiftState, state))
		}

		var on, dontCare modifier.KeySet
		if state&stateShift != 0 {
			on = on.With(modifier.Shift)
		}
		if state&stateCtrl != 0 {
			on = on.With(modifier.Control)
		}
		if state&stateAlt != 0 {
			on = on.With(modifier.Alt)
		}
		if state&(stateCtrl|stateAlt) != 0 {
			dontCare = dontCare.With(modifier.CapsLock)
		}
		c, err := modifier.OfOnAndDontCareKeys(on, dontCare)
		if err != nil {
			return k.errorAt(line.num, err)
		}
		combinations := []modifier.Combination{c}
		if c == shiftCombination {
			k.shiftState = state
		}
		// Ctrl+Alt is what Windows reports for AltGr.
		if state&stateCtrl != 0 && state&stateAlt != 0 {
			altGr := on.Without(modifier.Control).Without(modifier.Alt).With(modifier.AltRight)
			c, err := modifier.OfOnAndDontCareKeys(altGr, dontCare)
			if err != nil {
				return k.errorAt(line.num, err)
			}
			combinations = append(combinations, c)
		}
		k.order = append(k.order, state)
		k.states[state] = combinations
	}
	return nil
}

func (k *klcReader) readLigatures() error {
	s := k.section("LIGATURE")
	if s == nil {
		return nil
	}
	for _, line := range s.lines {
		if len(line.fields) < 3 {
			return k.errorAt(line.num, fmt.Errorf("%w: ligature needs a virtual key, a column and characters", ErrInvalidLine))
		}
		column, err := strconv.Atoi(line.fields[1])
		if err != nil {
			return k.errorAt(line.num, fmt.Errorf("%w: ligature column %q", ErrInvalidLine, line.fields[1]))
		}
		lig, err := decodeCharacters(line.fields[2:])
		if err != nil {
			return k.errorAt(line.num, err)
		}
		k.ligatures[ligatureKey{virtualKey: line.fields[0], column: column}] = lig
	}
	return nil
}

func (k *klcReader) readDeadKeys() error {
	for _, s := range k.sections {
		if s.name != "DEADKEY" {
			continue
		}
		if len(s.args) == 0 {
			return k.errorAt(s.line, fmt.Errorf("%w: DEADKEY without a character", ErrInvalidLine))
		}
		dead, err := hexToString(s.args[0])
		if err != nil {
			return k.errorAt(s.line, err)
		}
		for _, line := range s.lines {
			if len(line.fields) < 2 {
				return k.errorAt(line.num, fmt.Errorf("%w: dead key entry needs a base and an output", ErrInvalidLine))
			}
			base, err := hexToString(line.fields[0])
			if err != nil {
				return k.errorAt(line.num, err)
			}
			output, err := hexToString(line.fields[1])
			if err != nil {
				return k.errorAt(line.num, err)
			}
			if err := k.builder.AddTransform(dead+base, output); err != nil {
				return k.errorAt(line.num, err)
			}
		}
	}
	return nil
}

var (
	capsCombination      = modifier.OfOnKeys(modifier.NewKeySet(modifier.CapsLock))
	shiftCapsCombination = modifier.OfOnKeys(modifier.NewKeySet(modifier.Shift, modifier.CapsLock))
)

// Scan codes of the keypad delete keys, which have no ISO position.
const (
	scanKeypadDelete = 0x53
	scanAbntDelete   = 0x7E
)

func (k *klcReader) readLayout() error {
	s, err := k.required("LAYOUT")
	if err != nil {
		return err
	}
	for i := 0; i < len(s.lines); i++ {
		line := s.lines[i]
		if len(line.fields) < 3 {
			return k.errorAt(line.num, fmt.Errorf("%w: layout line needs a scan code, a virtual key and a cap value", ErrInvalidLine))
		}
		scanCode, err := strconv.ParseInt(line.fields[0], 16, 32)
		if err != nil {
			return k.errorAt(line.num, fmt.Errorf("%w: scan code %q", ErrInvalidLine, line.fields[0]))
		}
		if scanCode == scanKeypadDelete || scanCode == scanAbntDelete {
			continue
		}
		pos, err := k.parser.keycodes.Position(int(scanCode))
		if err != nil {
			return k.errorAt(line.num, err)
		}

		byState, err := k.readOutputs(line, pos)
		if err != nil {
			return err
		}

		switch caps := line.fields[2]; caps {
		case "0":
			if err := k.addCaps(byState, capsCombination, shiftCapsCombination, line.num); err != nil {
				return err
			}
		case "1", "4", "5":
			if err := k.addCaps(byState, shiftCapsCombination, capsCombination, line.num); err != nil {
				return err
			}
		case "SGCap":
			// The next line lists the outputs with caps lock on.
			i++
			if i >= len(s.lines) {
				return k.errorAt(line.num, fmt.Errorf("%w: SGCap without a caps line", ErrInvalidLine))
			}
			if err := k.readCapsLine(s.lines[i], pos); err != nil {
				return err
			}
		default:
			return k.errorAt(line.num, fmt.Errorf("%w: %q", ErrInvalidCapsLock, caps))
		}
	}
	return nil
}

// readOutputs adds the outputs of a layout line and returns the character
// maps by shift state.
func (k *klcReader) readOutputs(line sectionLine, pos keyboard.Position) (map[int]keyboard.CharacterMap, error) {
	byState := make(map[int]keyboard.CharacterMap)
	for column, output := range line.fields[3:] {
		if column >= len(k.order) {
			return nil, k.errorAt(line.num, fmt.Errorf("%w: more outputs than shift states", ErrInvalidLine))
		}
		state := k.order[column]
		if output == "-1" {
			continue
		}

		var character string
		dead := false
		if output == "%%" {
			lig, ok := k.ligatures[ligatureKey{virtualKey: line.fields[1], column: column}]
			if !ok {
				return nil, k.errorAt(line.num, fmt.Errorf("%w: virtual key %s, column %d", ErrMissingLigature, line.fields[1], column))
			}
			character = lig
		} else {
			output, dead = strings.CutSuffix(output, "@")
			ch, err := hexToString(output)
			if err != nil {
				return nil, k.errorAt(line.num, err)
			}
			character = ch
		}

		cm := keyboard.NewCharacterMap(pos, character)
		if !dead && k.builder.StartsTransform(character) {
			cm = cm.MarkTransformNo()
		}
		if err := k.builder.AddCharacterMaps(k.states[state], cm); err != nil {
			return nil, k.errorAt(line.num, err)
		}
		byState[state] = cm
	}
	return byState, nil
}

// addCaps registers the base output under baseCaps and the shifted output
// under shiftCaps.
func (k *klcReader) addCaps(byState map[int]keyboard.CharacterMap, baseCaps, shiftCaps modifier.Combination, lineNum int) error {
	if cm, ok := byState[0]; ok {
		if err := k.builder.AddCharacterMap(baseCaps, cm); err != nil {
			return k.errorAt(lineNum, err)
		}
	}
	if k.shiftState < 0 {
		return nil
	}
	if cm, ok := byState[k.shiftState]; ok {
		if err := k.builder.AddCharacterMap(shiftCaps, cm); err != nil {
			return k.errorAt(lineNum, err)
		}
	}
	return nil
}

func (k *klcReader) readCapsLine(line sectionLine, pos keyboard.Position) error {
	if len(line.fields) < 3 {
		return k.errorAt(line.num, fmt.Errorf("%w: caps line", ErrInvalidLine))
	}
	for column, output := range line.fields[3:] {
		if column >= len(k.order) {
			return k.errorAt(line.num, fmt.Errorf("%w: more caps outputs than shift states", ErrInvalidLine))
		}
		if output == "-1" {
			continue
		}
		primary := k.states[k.order[column]][0]
		caps := modifier.OfOnKeys(primary.OnKeys().With(modifier.CapsLock))
		character, err := hexToString(output)
		if err != nil {
			return k.errorAt(line.num, err)
		}
		if err := k.builder.AddCharacterMap(caps, keyboard.NewCharacterMap(pos, character)); err != nil {
			return k.errorAt(line.num, err)
		}
	}
	return nil
}

// hexToString decodes a single character value.
func hexToString(v string) (string, error) {
	return decodeCharacters([]string{v})
}

// decodeCharacters decodes a run of character values. Characters outside
// the Basic Multilingual Plane are written as two UTF-16 surrogate halves,
// which must be adjacent.
func decodeCharacters(values []string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(values); i++ {
		r, err := hexToRune(values[i])
		if err != nil {
			return "", err
		}
		if !utf16.IsSurrogate(r) {
			b.WriteRune(r)
			continue
		}
		if i+1 < len(values) {
			if low, err := hexToRune(values[i+1]); err == nil {
				if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
					b.WriteRune(pair)
					i++
					continue
				}
			}
		}
		return "", fmt.Errorf("%w: unpaired surrogate %q", ErrInvalidLine, values[i])
	}
	return b.String(), nil
}

// hexToRune decodes a character value. Single letters and digits stand for
// themselves; anything else is a hexadecimal code point.
func hexToRune(v string) (rune, error) {
	if len(v) == 1 && isLetterOrDigit(v[0]) {
		return rune(v[0]), nil
	}
	code, err := strconv.ParseUint(v, 16, 32)
	if err != nil || code > 0x10FFFF {
		return 0, fmt.Errorf("%w: character value %q", ErrInvalidLine, v)
	}
	return rune(code), nil
}

func isLetterOrDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
