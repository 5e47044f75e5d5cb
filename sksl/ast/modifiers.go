package ast

import "strings"

type ModifierFlag uint32

const (
	FlagConst ModifierFlag = 1 << iota
	FlagIn
	FlagOut
	FlagLowp
	FlagMediump
	FlagHighp
	FlagUniform
	FlagFlat
	FlagNoPerspective
	FlagReadOnly
	FlagWriteOnly
	FlagCoherent
	FlagVolatile
	FlagRestrict
	FlagBuffer
	FlagHasSideEffects
	FlagPLS
	FlagPLSIn
	FlagPLSOut
	FlagVarying
	FlagInline
)

var modifierNames = []struct {
	flag ModifierFlag
	name string
}{
	{FlagUniform, "uniform"},
	{FlagConst, "const"},
	{FlagLowp, "lowp"},
	{FlagMediump, "mediump"},
	{FlagHighp, "highp"},
	{FlagFlat, "flat"},
	{FlagNoPerspective, "noperspective"},
	{FlagReadOnly, "readonly"},
	{FlagWriteOnly, "writeonly"},
	{FlagCoherent, "coherent"},
	{FlagVolatile, "volatile"},
	{FlagRestrict, "restrict"},
	{FlagBuffer, "buffer"},
	{FlagHasSideEffects, "sk_has_side_effects"},
	{FlagPLS, "__pixel_localEXT"},
	{FlagPLSIn, "__pixel_local_inEXT"},
	{FlagPLSOut, "__pixel_local_outEXT"},
	{FlagVarying, "varying"},
	{FlagInline, "inline"},
}

// Modifiers is the qualifier set written before a declaration.
type Modifiers struct {
	Layout Layout
	Flags  ModifierFlag
}

func (m Modifiers) Has(flag ModifierFlag) bool {
	return m.Flags&flag != 0
}

// FlagsString renders just the qualifier keywords, in canonical order.
func (m Modifiers) FlagsString() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.flag) {
			parts = append(parts, mn.name)
		}
	}
	switch {
	case m.Has(FlagIn) && m.Has(FlagOut):
		parts = append(parts, "inout")
	case m.Has(FlagIn):
		parts = append(parts, "in")
	case m.Has(FlagOut):
		parts = append(parts, "out")
	}
	return strings.Join(parts, " ")
}

// String renders the layout and the qualifier keywords, e.g.
// "layout (location = 0) in".
func (m Modifiers) String() string {
	layout := m.Layout.String()
	flags := m.FlagsString()
	switch {
	case layout == "":
		return flags
	case flags == "":
		return layout
	}
	return layout + " " + flags
}
