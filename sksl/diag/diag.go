// Package diag collects parser diagnostics.
//
// A Reporter is a pure recording sink: reporting never fails and never
// interrupts the caller. Speculative parses truncate a Reporter back to an
// earlier count with SetErrorCount, so implementations must keep diagnostics
// in report order.
package diag

import (
	"fmt"
	"sort"
)

type Code int

const (
	SyntaxError Code = iota
	TypeAsIdentifier
	MalformedLiteral
	UnknownLayoutKey
	TooDeeplyNested
)

var codeNames = map[Code]string{
	SyntaxError:      "syntax-error",
	TypeAsIdentifier: "type-as-identifier",
	MalformedLiteral: "malformed-literal",
	UnknownLayoutKey: "unknown-layout-key",
	TooDeeplyNested:  "too-deeply-nested",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

type Diagnostic struct {
	Offset  int
	Code    Code
	Message string
}

type Reporter interface {
	Report(d Diagnostic)
	ErrorCount() int
	// SetErrorCount discards every diagnostic reported after the first n.
	SetErrorCount(n int)
}

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// LineIndex maps byte offsets to 1-based line and column numbers.
type LineIndex struct {
	file   string
	starts []int
}

func NewLineIndex(file string, src []byte) *LineIndex {
	starts := []int{0}
	for i, ch := range src {
		if ch == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{file: file, starts: starts}
}

func (li *LineIndex) Position(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	})
	if line == 0 {
		line = 1
	}
	return Position{
		File:   li.file,
		Offset: offset,
		Line:   line,
		Column: offset - li.starts[line-1] + 1,
	}
}

// Offset is the inverse of Position. Lines past the end clamp to the last
// line and columns are not checked against the line length.
func (li *LineIndex) Offset(line, column int) int {
	line = max(1, min(line, len(li.starts)))
	return li.starts[line-1] + max(column, 1) - 1
}

// List is a Reporter that keeps every diagnostic in memory.
type List struct {
	index *LineIndex
	items []Diagnostic
}

func NewList(file string, src []byte) *List {
	return &List{index: NewLineIndex(file, src)}
}

func (l *List) Report(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) ErrorCount() int {
	return len(l.items)
}

func (l *List) SetErrorCount(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(l.items) {
		l.items = l.items[:n]
	}
}

func (l *List) Diagnostics() []Diagnostic {
	return l.items
}

func (l *List) Position(d Diagnostic) Position {
	return l.index.Position(d.Offset)
}

// Format renders a diagnostic as "file:line:col: error: message".
func (l *List) Format(d Diagnostic) string {
	return fmt.Sprintf("%s: error: %s", l.Position(d), d.Message)
}

func (l *List) HasCode(code Code) bool {
	for _, d := range l.items {
		if d.Code == code {
			return true
		}
	}
	return false
}
