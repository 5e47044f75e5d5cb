package ast

import (
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

type LayoutFlag uint32

const (
	LayoutOriginUpperLeft LayoutFlag = 1 << iota
	LayoutOverrideCoverage
	LayoutEarlyFragmentTests
	LayoutBlendSupportAllEquations
	LayoutPushConstant
	LayoutTracked
	LayoutSRGBUnpremul
)

var layoutFlagNames = []struct {
	flag LayoutFlag
	name string
}{
	{LayoutOriginUpperLeft, "origin_upper_left"},
	{LayoutOverrideCoverage, "override_coverage"},
	{LayoutEarlyFragmentTests, "early_fragment_tests"},
	{LayoutBlendSupportAllEquations, "blend_support_all_equations"},
	{LayoutPushConstant, "push_constant"},
	{LayoutTracked, "tracked"},
	{LayoutSRGBUnpremul, "srgb_unpremul"},
}

type Primitive int

const (
	PrimitiveUnspecified Primitive = iota
	PrimitivePoints
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveLinesAdjacency
	PrimitiveTriangles
	PrimitiveTriangleStrip
	PrimitiveTrianglesAdjacency
)

var primitiveNames = map[Primitive]string{
	PrimitivePoints:             "points",
	PrimitiveLines:              "lines",
	PrimitiveLineStrip:          "line_strip",
	PrimitiveLinesAdjacency:     "lines_adjacency",
	PrimitiveTriangles:          "triangles",
	PrimitiveTriangleStrip:      "triangle_strip",
	PrimitiveTrianglesAdjacency: "triangles_adjacency",
}

func (p Primitive) String() string {
	return primitiveNames[p]
}

type LayoutKey int

const (
	KeyNone LayoutKey = iota
	// KeyKey marks a plain "key" qualifier.
	KeyKey
	// KeyIdentity marks "key = identity".
	KeyIdentity
)

type CType int

const (
	CTypeDefault CType = iota
	CTypeSkPMColor4f
	CTypeSkV4
	CTypeSkRect
	CTypeSkIRect
	CTypeSkPMColor
	CTypeSkM44
	CTypeBool
	CTypeInt32
	CTypeFloat
)

var ctypeNames = map[CType]string{
	CTypeSkPMColor4f: "skpmcolor4f",
	CTypeSkV4:        "skv4",
	CTypeSkRect:      "skrect",
	CTypeSkIRect:     "skirect",
	CTypeSkPMColor:   "skpmcolor",
	CTypeSkM44:       "skm44",
	CTypeBool:        "bool",
	CTypeInt32:       "int",
	CTypeFloat:       "float",
}

func (c CType) String() string {
	return ctypeNames[c]
}

// Layout holds the values of a layout(...) qualifier. Integer and code
// fields are null when the qualifier was not written, which keeps
// "location = 0" distinguishable from no location at all.
type Layout struct {
	Flags                LayoutFlag
	Location             null.Int
	Offset               null.Int
	Binding              null.Int
	Index                null.Int
	Set                  null.Int
	Builtin              null.Int
	InputAttachmentIndex null.Int
	Primitive            Primitive
	MaxVertices          null.Int
	Invocations          null.Int
	Marker               null.String
	When                 null.String
	Key                  LayoutKey
	CType                CType
}

func (l Layout) Has(flag LayoutFlag) bool {
	return l.Flags&flag != 0
}

func (l Layout) IsEmpty() bool {
	return l.String() == ""
}

// String renders the qualifier as source text, or "" when nothing is set.
func (l Layout) String() string {
	var parts []string
	ints := []struct {
		name  string
		value null.Int
	}{
		{"location", l.Location},
		{"offset", l.Offset},
		{"binding", l.Binding},
		{"index", l.Index},
		{"set", l.Set},
		{"builtin", l.Builtin},
		{"input_attachment_index", l.InputAttachmentIndex},
	}
	for _, f := range ints {
		if f.value.Valid {
			parts = append(parts, f.name+" = "+strconv.FormatInt(f.value.Int64, 10))
		}
	}
	for _, fn := range layoutFlagNames {
		if l.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if l.Primitive != PrimitiveUnspecified {
		parts = append(parts, l.Primitive.String())
	}
	if l.MaxVertices.Valid {
		parts = append(parts, "max_vertices = "+strconv.FormatInt(l.MaxVertices.Int64, 10))
	}
	if l.Invocations.Valid {
		parts = append(parts, "invocations = "+strconv.FormatInt(l.Invocations.Int64, 10))
	}
	if l.Marker.Valid {
		parts = append(parts, "marker = "+l.Marker.String)
	}
	if l.When.Valid {
		parts = append(parts, "when = "+l.When.String)
	}
	switch l.Key {
	case KeyKey:
		parts = append(parts, "key")
	case KeyIdentity:
		parts = append(parts, "key = identity")
	}
	if l.CType != CTypeDefault {
		parts = append(parts, "ctype = "+l.CType.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return "layout (" + strings.Join(parts, ", ") + ")"
}
