package keeper

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Atom names interned at startup.
const (
	NameClipboard = "CLIPBOARD"
	NameUTF8      = "UTF8_STRING"
	NameIncr      = "INCR"
	NameProperty  = "GHOSTCLIP"
)

// Atoms holds the identifiers the keeper needs, resolved once before the
// dispatch loop starts.
type Atoms struct {
	Clipboard xproto.Atom // selection being kept
	UTF8      xproto.Atom // the only supported target
	Incr      xproto.Atom // large-transfer marker type
	Property  xproto.Atom // private property on our window
}

// ResolveAtoms interns every name in Atoms.
func ResolveAtoms(in Interner) (Atoms, error) {
	var a Atoms
	for _, r := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{NameClipboard, &a.Clipboard},
		{NameUTF8, &a.UTF8},
		{NameIncr, &a.Incr},
		{NameProperty, &a.Property},
	} {
		atom, err := in.InternAtom(r.name)
		if err != nil {
			return Atoms{}, fmt.Errorf("intern %s: %w", r.name, err)
		}
		*r.dst = atom
	}
	return a, nil
}
