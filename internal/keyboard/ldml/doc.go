// Package ldml writes keyboards in the LDML Keyboard XML format and
// hardware maps in the LDML Platform XML format.
//
// Keyboard files look like:
//
//	<?xml version="1.0" encoding="UTF-8" ?>
//	<!DOCTYPE keyboard SYSTEM "../dtd/ldmlKeyboard.dtd">
//	<keyboard locale="de-CH-t-k0-windows">
//		<version platform="10.0" number="$Revision$"/>
//		<names>
//			<name value="Swiss German"/>
//		</names>
//		<keyMap>
//			<map iso="E00" to="§"/>
//			...
//		</keyMap>
//		<keyMap modifiers="shift caps?">
//			...
//		</keyMap>
//		<transforms type="simple">
//			<transform from="^a" to="â"/>
//		</transforms>
//	</keyboard>
//
// Output strings are normalised to NFC. Characters that are invisible or
// that would combine with the surrounding markup are written as \u{XXXX}
// escapes; see Escape.
package ldml
