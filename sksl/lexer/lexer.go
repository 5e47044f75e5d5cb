package lexer

// Lexer splits a source buffer into tokens. It never fails: unrecognised
// bytes become Invalid tokens, and once the end of the buffer is reached
// every further call to Next returns an EOF token.
type Lexer struct {
	input []byte
	pos   int
}

func New(input []byte) *Lexer {
	return &Lexer{input: input}
}

// Checkpoint returns the current byte offset, suitable for Rewind.
func (l *Lexer) Checkpoint() int32 {
	return int32(l.pos)
}

// Rewind resumes lexing at a byte offset previously returned by Checkpoint
// or taken from a token start.
func (l *Lexer) Rewind(offset int32) {
	if offset < 0 {
		offset = 0
	}
	if int(offset) > len(l.input) {
		offset = int32(len(l.input))
	}
	l.pos = int(offset)
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) token(kind Kind, start int) Token {
	return Token{Kind: kind, Offset: int32(start), Length: int32(l.pos - start)}
}

func (l *Lexer) Next() Token {
	start := l.pos
	if l.atEnd() {
		return Token{Kind: EOF, Offset: int32(len(l.input))}
	}

	ch := l.peek()
	switch {
	case isSpace(ch):
		for !l.atEnd() && isSpace(l.peek()) {
			l.pos++
		}
		return l.token(Whitespace, start)
	case ch == '/' && l.peekN(1) == '/':
		for !l.atEnd() && l.peek() != '\n' {
			l.pos++
		}
		return l.token(LineComment, start)
	case ch == '/' && l.peekN(1) == '*':
		l.pos += 2
		for !l.atEnd() {
			if l.peek() == '*' && l.peekN(1) == '/' {
				l.pos += 2
				break
			}
			l.pos++
		}
		return l.token(BlockComment, start)
	case isLetter(ch):
		for isLetterOrDigit(l.peek()) {
			l.pos++
		}
		return l.token(LookupKeyword(string(l.input[start:l.pos])), start)
	case isDigit(ch):
		return l.scanNumber(start)
	case ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start)
	case ch == '#':
		return l.scanPrefixed(start, Directive)
	case ch == '@':
		tok := l.scanPrefixed(start, Section)
		switch string(l.input[start:l.pos]) {
		case "@if":
			tok.Kind = StaticIf
		case "@switch":
			tok.Kind = StaticSwitch
		}
		return tok
	}
	return l.scanOperator(start)
}

func (l *Lexer) scanPrefixed(start int, kind Kind) Token {
	l.pos++
	if !isLetter(l.peek()) {
		return l.token(Invalid, start)
	}
	for isLetter(l.peek()) {
		l.pos++
	}
	return l.token(kind, start)
}

func (l *Lexer) scanNumber(start int) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') && isHexDigit(l.peekN(2)) {
		l.pos += 2
		for isHexDigit(l.peek()) {
			l.pos++
		}
		if l.peek() == 'u' || l.peek() == 'U' {
			l.pos++
		}
		return l.token(IntLiteral, start)
	}

	isFloat := false
	for isDigit(l.peek()) {
		l.pos++
	}
	if l.peek() == '.' {
		isFloat = true
		l.pos++
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	if (l.peek() == 'e' || l.peek() == 'E') && l.hasExponent() {
		isFloat = true
		l.pos++
		if l.peek() == '+' || l.peek() == '-' {
			l.pos++
		}
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	if isFloat {
		return l.token(FloatLiteral, start)
	}
	if l.peek() == 'u' || l.peek() == 'U' {
		l.pos++
	}
	return l.token(IntLiteral, start)
}

// hasExponent reports whether the 'e' at the current position starts a
// well-formed exponent rather than an identifier such as a swizzle.
func (l *Lexer) hasExponent() bool {
	next := l.peekN(1)
	if next == '+' || next == '-' {
		return isDigit(l.peekN(2))
	}
	return isDigit(next)
}

// operators is ordered so that longer spellings are tried first.
var operators = []struct {
	text string
	kind Kind
}{
	{"<<=", ShlEq},
	{">>=", ShrEq},
	{"||=", LogicalOrEq},
	{"^^=", LogicalXorEq},
	{"&&=", LogicalAndEq},
	{"++", PlusPlus},
	{"--", MinusMinus},
	{"<<", Shl},
	{">>", Shr},
	{"||", LogicalOr},
	{"^^", LogicalXor},
	{"&&", LogicalAnd},
	{"==", EqEq},
	{"!=", Neq},
	{"<=", LtEq},
	{">=", GtEq},
	{"+=", PlusEq},
	{"-=", MinusEq},
	{"*=", StarEq},
	{"/=", SlashEq},
	{"%=", PercentEq},
	{"|=", BitwiseOrEq},
	{"^=", BitwiseXorEq},
	{"&=", BitwiseAndEq},
	{"::", ColonColon},
	{"->", Arrow},
	{"(", LParen},
	{")", RParen},
	{"{", LBrace},
	{"}", RBrace},
	{"[", LBracket},
	{"]", RBracket},
	{".", Dot},
	{",", Comma},
	{";", Semicolon},
	{"?", Question},
	{":", Colon},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"%", Percent},
	{"|", BitwiseOr},
	{"^", BitwiseXor},
	{"&", BitwiseAnd},
	{"~", BitwiseNot},
	{"!", LogicalNot},
	{"=", Eq},
	{"<", Lt},
	{">", Gt},
}

func (l *Lexer) scanOperator(start int) Token {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			l.pos += len(op.text)
			return l.token(op.kind, start)
		}
	}
	l.pos++
	return l.token(Invalid, start)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetterOrDigit(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
