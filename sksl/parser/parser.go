package parser

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
	"github.com/dhamidi/sksl/sksl/symbols"
)

var log = commonlog.GetLogger("sksl.parser")

// SymbolTable answers whether an identifier names a type in the currently
// visible scopes. AddType is called when a struct or enum is declared.
type SymbolTable interface {
	IsType(name string) bool
	AddType(name string)
}

// scoper is implemented by tables that track nested scopes. When present,
// the parser opens a scope for every block it enters.
type scoper interface {
	PushScope()
	PopScope()
}

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithMaxDepth bounds the nesting of statements and expressions.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithSymbols replaces the symbol table used by ParseFile.
func WithSymbols(table SymbolTable) Option {
	return func(p *Parser) {
		p.symbols = table
	}
}

type Parser struct {
	file     string
	src      []byte
	lexer    *lexer.Lexer
	symbols  SymbolTable
	errors   diag.Reporter
	arena    *ast.Arena
	lines    *diag.LineIndex
	maxDepth int
	depth    int

	pushed      lexer.Token
	hasPushback bool

	// live counts checkpoints that were taken but neither rewound nor
	// released; it enforces last-in-first-out use.
	live int

	eofReported bool
}

// New creates a parser over src. Diagnostics go to errors; the parser never
// returns them as Go errors.
func New(src []byte, table SymbolTable, errors diag.Reporter, opts ...Option) *Parser {
	p := &Parser{
		src:      src,
		lexer:    lexer.New(src),
		symbols:  table,
		errors:   errors,
		arena:    ast.NewArena(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses one compilation unit with a fresh builtin symbol table and
// returns the tree together with the collected diagnostics.
func ParseFile(name string, src []byte, opts ...Option) (*ast.File, *diag.List) {
	list := diag.NewList(name, src)
	all := append([]Option{WithFile(name)}, opts...)
	p := New(src, symbols.New(), list, all...)
	return p.CompilationUnit(), list
}

// Text returns the source text of tok.
func (p *Parser) Text(tok lexer.Token) string {
	return tok.Text(p.src)
}

func (p *Parser) Position(tok lexer.Token) diag.Position {
	if p.lines == nil {
		p.lines = diag.NewLineIndex(p.file, p.src)
	}
	return p.lines.Position(int(tok.Offset))
}

// describe renders a token for "but found ..." messages.
func (p *Parser) describe(tok lexer.Token) string {
	if tok.Kind == lexer.EOF {
		return "end of file"
	}
	return "'" + p.Text(tok) + "'"
}

func (p *Parser) errorAt(offset int, code diag.Code, msg string) {
	p.errors.Report(diag.Diagnostic{Offset: offset, Code: code, Message: msg})
}

func (p *Parser) error(tok lexer.Token, msg string) {
	p.errorAt(int(tok.Offset), diag.SyntaxError, msg)
}

func (p *Parser) errorf(tok lexer.Token, code diag.Code, format string, args ...any) {
	p.errorAt(int(tok.Offset), code, fmt.Sprintf(format, args...))
}

func (p *Parser) isType(name string) bool {
	return p.symbols.IsType(name)
}

func (p *Parser) createNode(kind ast.Kind, offset int, data any) ast.ID {
	return p.arena.Create(kind, offset, data)
}

func (p *Parser) addChild(parent, child ast.ID) ast.ID {
	return p.arena.AddChild(parent, child)
}

// createEmptyChild appends an Empty placeholder, used for omitted array
// sizes, for-loop clauses and the default switch case label.
func (p *Parser) createEmptyChild(parent ast.ID) {
	p.addChild(parent, p.createNode(ast.KindEmpty, p.arena.Get(parent).Offset, nil))
}

func (p *Parser) node(id ast.ID) *ast.Node {
	return p.arena.Get(id)
}

func offset(tok lexer.Token) int {
	return int(tok.Offset)
}

// CompilationUnit parses the whole input. It always returns a file; the
// caller inspects the error reporter to decide whether the tree is usable.
//
//	compilationUnit: (directive | section | precision | declaration)* EOF
func (p *Parser) CompilationUnit() *ast.File {
	root := p.createNode(ast.KindFile, 0, nil)
	for {
		tok := p.peek()
		if tok.Kind == lexer.EOF {
			break
		}
		mark := p.arena.Mark()
		switch tok.Kind {
		case lexer.Directive:
			if id := p.directive(); id.Valid() {
				p.addChild(root, id)
			}
			continue
		case lexer.Section:
			if id := p.section(); id.Valid() {
				p.addChild(root, id)
				continue
			}
		case lexer.Precision:
			ok := p.precision()
			p.arena.Rewind(mark)
			if ok {
				continue
			}
		default:
			if id := p.declaration(); id.Valid() {
				p.addChild(root, id)
				continue
			}
		}
		p.arena.Rewind(mark)
		p.synchronize(true)
	}
	log.Debugf("parsed %s: %d nodes, %d diagnostics", p.file, p.arena.Len(), p.errors.ErrorCount())
	return &ast.File{
		Name:   p.file,
		Source: p.src,
		Arena:  p.arena,
		Root:   root,
	}
}

// synchronize skips tokens after a failed statement or declaration. It stops
// just past a ';' at brace depth zero, just past the '}' closing a block that
// was opened while skipping, or in front of a '}' closing the enclosing
// block. At top level that stray '}' is consumed as well.
func (p *Parser) synchronize(topLevel bool) {
	depth := 0
	for {
		tok := p.next()
		switch tok.Kind {
		case lexer.EOF:
			p.pushback(tok)
			return
		case lexer.LBrace:
			depth++
		case lexer.RBrace:
			if depth == 0 {
				if !topLevel {
					p.pushback(tok)
				}
				return
			}
			depth--
			if depth == 0 {
				return
			}
		case lexer.Semicolon:
			if depth == 0 {
				return
			}
		}
	}
}
