// Package osx reads Mac OS X keyboard layout files (.keylayout).
//
// A .keylayout file is XML. The parser uses the layout for hardware type 0
// (first="0"), turns each keyMapSelect of its modifier map into modifier
// combinations, resolves the key maps of its key map set (including
// baseMapSet inheritance), and follows actions to find key outputs, dead
// keys and the transforms they start.
//
// Modifier tokens map onto modifier keys as follows; a "?" suffix makes the
// key don't-care:
//
//	anyShift    shift      shift      shiftL    rightShift    shiftR
//	anyOption   opt        option     optL      rightOption   optR
//	anyControl  ctrl       control    ctrlL     rightControl  ctrlR
//	command     cmd        caps       caps
//
// Layout names are resolved to keyboard ids through an embedded table,
// which can be replaced with WithKeyboardIDMap.
package osx
