package ldml

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/cldrtools/keyboard/internal/keyboard"
)

// Document type declarations of the emitted files.
const (
	KeyboardDTD = "../dtd/ldmlKeyboard.dtd"
	PlatformDTD = "../dtd/ldmlPlatform.dtd"
)

// revision is expanded by the version control system of the data files.
const revision = "$Revision$"

var templateKeyboard = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE keyboard SYSTEM "{{.DTD}}">
<keyboard locale="{{attr .Locale}}">
	<version platform="{{attr .PlatformVersion}}" number="{{.Revision}}"/>
	<names>
{{- range .Names}}
		<name value="{{attr .}}"/>
{{- end}}
	</names>
{{- range .KeyMaps}}
	<keyMap{{with .Modifiers}} modifiers="{{attr .}}"{{end}}>
{{- range .Maps}}
		<map iso="{{.ISO}}" to="{{attr .To}}"{{with .LongPress}} longPress="{{attr .}}"{{end}}{{if .TransformNo}} transform="no"{{end}}/>
{{- end}}
	</keyMap>
{{- end}}
{{- with .Transforms}}
	<transforms type="simple">
{{- range .}}
		<transform from="{{attr .From}}" to="{{attr .To}}"/>
{{- end}}
	</transforms>
{{- end}}
</keyboard>
`

var templatePlatform = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE platform SYSTEM "{{.DTD}}">
<platform id="{{attr .ID}}">
	<hardwareMap>
{{- range .Maps}}
		<map keycode="{{.Keycode}}" iso="{{.ISO}}"/>
{{- end}}
	</hardwareMap>
</platform>
`

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var funcMap = template.FuncMap{
	"attr": attrEscaper.Replace,
}

func makeTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcMap).Parse(text))
}

var (
	keyboardTemplate = makeTemplate("keyboard", templateKeyboard)
	platformTemplate = makeTemplate("platform", templatePlatform)
)

// defaultPlatformVersions are written in <version platform=...> unless
// overridden.
var defaultPlatformVersions = map[keyboard.Platform]string{
	keyboard.PlatformAndroid:  "4.4",
	keyboard.PlatformChromeOS: "33",
	keyboard.PlatformOSX:      "10.9",
	keyboard.PlatformWindows:  "10.0",
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithPlatformVersion sets the platform version written for keyboards of
// platform p. An empty version keeps the default.
func WithPlatformVersion(p keyboard.Platform, version string) Option {
	return func(e *Encoder) {
		if version != "" {
			e.versions[p] = version
		}
	}
}

// Encoder writes LDML documents. An Encoder is safe for concurrent use
// once created.
type Encoder struct {
	versions map[keyboard.Platform]string
}

// NewEncoder returns an encoder with the given options applied.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{versions: make(map[keyboard.Platform]string, len(defaultPlatformVersions))}
	for p, v := range defaultPlatformVersions {
		e.versions[p] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlatformVersion returns the version written for keyboards of platform p.
func (e *Encoder) PlatformVersion(p keyboard.Platform) string {
	return e.versions[p]
}

type keyboardDoc struct {
	DTD             string
	Locale          string
	PlatformVersion string
	Revision        string
	Names           []string
	KeyMaps         []keyMapDoc
	Transforms      []transformDoc
}

type keyMapDoc struct {
	Modifiers string
	Maps      []mapDoc
}

type mapDoc struct {
	ISO         string
	To          string
	LongPress   string
	TransformNo bool
}

type transformDoc struct {
	From string
	To   string
}

// EncodeKeyboard writes kb as an LDML keyboard document.
func (e *Encoder) EncodeKeyboard(w io.Writer, kb *keyboard.Keyboard) error {
	id := kb.ID()
	doc := keyboardDoc{
		DTD:             KeyboardDTD,
		Locale:          id.String(),
		PlatformVersion: e.versions[id.Platform],
		Revision:        revision,
		Names:           kb.Names(),
	}
	for _, km := range kb.KeyMaps() {
		kd := keyMapDoc{Modifiers: km.Modifiers().String()}
		for _, cm := range km.CharacterMaps() {
			md := mapDoc{
				ISO:         cm.Position.String(),
				To:          Escape(cm.Output),
				TransformNo: cm.TransformNo,
			}
			if len(cm.LongPress) > 0 {
				escaped := make([]string, len(cm.LongPress))
				for i, lp := range cm.LongPress {
					escaped[i] = Escape(lp)
				}
				md.LongPress = strings.Join(escaped, " ")
			}
			kd.Maps = append(kd.Maps, md)
		}
		doc.KeyMaps = append(doc.KeyMaps, kd)
	}
	for _, t := range kb.Transforms() {
		doc.Transforms = append(doc.Transforms, transformDoc{From: Escape(t.Sequence), To: Escape(t.Output)})
	}
	if err := keyboardTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("writing keyboard %s: %w", id, err)
	}
	return nil
}

type platformDoc struct {
	DTD  string
	ID   string
	Maps []hardwareMapDoc
}

type hardwareMapDoc struct {
	Keycode int
	ISO     string
}

// EncodePlatform writes the hardware map of platform p, sorted by keycode.
func (e *Encoder) EncodePlatform(w io.Writer, p keyboard.Platform, keycodes *keyboard.KeycodeMap) error {
	doc := platformDoc{DTD: PlatformDTD, ID: p.String()}
	for _, code := range keycodes.Keycodes() {
		pos, err := keycodes.Position(code)
		if err != nil {
			return err
		}
		doc.Maps = append(doc.Maps, hardwareMapDoc{Keycode: code, ISO: pos.String()})
	}
	if err := platformTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("writing platform %s: %w", p, err)
	}
	return nil
}

// EncodeKeyboard writes kb with the default encoder.
func EncodeKeyboard(w io.Writer, kb *keyboard.Keyboard) error {
	return NewEncoder().EncodeKeyboard(w, kb)
}

// EncodePlatform writes a hardware map with the default encoder.
func EncodePlatform(w io.Writer, p keyboard.Platform, keycodes *keyboard.KeycodeMap) error {
	return NewEncoder().EncodePlatform(w, p, keycodes)
}
