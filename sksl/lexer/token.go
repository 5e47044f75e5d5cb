package lexer

type Kind int

const (
	EOF Kind = iota
	Invalid
	Whitespace
	LineComment
	BlockComment

	// Literals
	Identifier
	IntLiteral
	FloatLiteral
	TrueLiteral
	FalseLiteral
	NullLiteral

	// Keywords
	If
	StaticIf
	Else
	For
	While
	Do
	Switch
	StaticSwitch
	Case
	Default
	Break
	Continue
	Discard
	Return
	In
	Out
	Inout
	Uniform
	Const
	Flat
	NoPerspective
	ReadOnly
	WriteOnly
	Coherent
	Volatile
	Restrict
	Buffer
	HasSideEffects
	PLS
	PLSIn
	PLSOut
	Varying
	Inline
	Lowp
	Mediump
	Highp
	Struct
	Layout
	Precision
	Enum
	Class

	// Preprocessor-like
	Directive
	Section

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Dot
	Comma
	Semicolon
	Question
	Colon
	ColonColon
	Arrow

	// Operators
	PlusPlus
	MinusMinus
	Plus
	Minus
	Star
	Slash
	Percent
	Shl
	Shr
	BitwiseOr
	BitwiseXor
	BitwiseAnd
	BitwiseNot
	LogicalOr
	LogicalXor
	LogicalAnd
	LogicalNot
	Eq
	EqEq
	Neq
	Lt
	Gt
	LtEq
	GtEq
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	ShlEq
	ShrEq
	BitwiseOrEq
	BitwiseXorEq
	BitwiseAndEq
	LogicalOrEq
	LogicalXorEq
	LogicalAndEq
)

var kindNames = map[Kind]string{
	EOF:            "EOF",
	Invalid:        "Invalid",
	Whitespace:     "Whitespace",
	LineComment:    "LineComment",
	BlockComment:   "BlockComment",
	Identifier:     "Identifier",
	IntLiteral:     "IntLiteral",
	FloatLiteral:   "FloatLiteral",
	TrueLiteral:    "true",
	FalseLiteral:   "false",
	NullLiteral:    "null",
	If:             "if",
	StaticIf:       "@if",
	Else:           "else",
	For:            "for",
	While:          "while",
	Do:             "do",
	Switch:         "switch",
	StaticSwitch:   "@switch",
	Case:           "case",
	Default:        "default",
	Break:          "break",
	Continue:       "continue",
	Discard:        "discard",
	Return:         "return",
	In:             "in",
	Out:            "out",
	Inout:          "inout",
	Uniform:        "uniform",
	Const:          "const",
	Flat:           "flat",
	NoPerspective:  "noperspective",
	ReadOnly:       "readonly",
	WriteOnly:      "writeonly",
	Coherent:       "coherent",
	Volatile:       "volatile",
	Restrict:       "restrict",
	Buffer:         "buffer",
	HasSideEffects: "sk_has_side_effects",
	PLS:            "__pixel_localEXT",
	PLSIn:          "__pixel_local_inEXT",
	PLSOut:         "__pixel_local_outEXT",
	Varying:        "varying",
	Inline:         "inline",
	Lowp:           "lowp",
	Mediump:        "mediump",
	Highp:          "highp",
	Struct:         "struct",
	Layout:         "layout",
	Precision:      "precision",
	Enum:           "enum",
	Class:          "class",
	Directive:      "Directive",
	Section:        "Section",
	LParen:         "(",
	RParen:         ")",
	LBrace:         "{",
	RBrace:         "}",
	LBracket:       "[",
	RBracket:       "]",
	Dot:            ".",
	Comma:          ",",
	Semicolon:      ";",
	Question:       "?",
	Colon:          ":",
	ColonColon:     "::",
	Arrow:          "->",
	PlusPlus:       "++",
	MinusMinus:     "--",
	Plus:           "+",
	Minus:          "-",
	Star:           "*",
	Slash:          "/",
	Percent:        "%",
	Shl:            "<<",
	Shr:            ">>",
	BitwiseOr:      "|",
	BitwiseXor:     "^",
	BitwiseAnd:     "&",
	BitwiseNot:     "~",
	LogicalOr:      "||",
	LogicalXor:     "^^",
	LogicalAnd:     "&&",
	LogicalNot:     "!",
	Eq:             "=",
	EqEq:           "==",
	Neq:            "!=",
	Lt:             "<",
	Gt:             ">",
	LtEq:           "<=",
	GtEq:           ">=",
	PlusEq:         "+=",
	MinusEq:        "-=",
	StarEq:         "*=",
	SlashEq:        "/=",
	PercentEq:      "%=",
	ShlEq:          "<<=",
	ShrEq:          ">>=",
	BitwiseOrEq:    "|=",
	BitwiseXorEq:   "^=",
	BitwiseAndEq:   "&=",
	LogicalOrEq:    "||=",
	LogicalXorEq:   "^^=",
	LogicalAndEq:   "&&=",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether tokens of this kind carry no grammatical meaning.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == LineComment || k == BlockComment
}

// Token is a classified span of the source buffer. It does not own any text;
// use Text to recover it.
type Token struct {
	Kind   Kind
	Offset int32
	Length int32
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return int(t.Offset) + int(t.Length)
}

// Text returns the exact bytes of src covered by the token.
func (t Token) Text(src []byte) string {
	start := int(t.Offset)
	end := t.End()
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

var keywords = map[string]Kind{
	"true":                 TrueLiteral,
	"false":                FalseLiteral,
	"null":                 NullLiteral,
	"if":                   If,
	"else":                 Else,
	"for":                  For,
	"while":                While,
	"do":                   Do,
	"switch":               Switch,
	"case":                 Case,
	"default":              Default,
	"break":                Break,
	"continue":             Continue,
	"discard":              Discard,
	"return":               Return,
	"in":                   In,
	"out":                  Out,
	"inout":                Inout,
	"uniform":              Uniform,
	"const":                Const,
	"flat":                 Flat,
	"noperspective":        NoPerspective,
	"readonly":             ReadOnly,
	"writeonly":            WriteOnly,
	"coherent":             Coherent,
	"volatile":             Volatile,
	"restrict":             Restrict,
	"buffer":               Buffer,
	"sk_has_side_effects":  HasSideEffects,
	"__pixel_localEXT":     PLS,
	"__pixel_local_inEXT":  PLSIn,
	"__pixel_local_outEXT": PLSOut,
	"varying":              Varying,
	"inline":               Inline,
	"lowp":                 Lowp,
	"mediump":              Mediump,
	"highp":                Highp,
	"struct":               Struct,
	"layout":               Layout,
	"precision":            Precision,
	"enum":                 Enum,
	"class":                Class,
}

func LookupKeyword(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Identifier
}
