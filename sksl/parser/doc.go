// Package parser turns SkSL source text into an abstract syntax tree.
//
// # Overview
//
// The parser is a hand-written recursive-descent parser. It pulls tokens
// from the lexer on demand and appends nodes to an [ast.Arena]; nodes refer
// to each other by [ast.ID] rather than by pointer, so a failed speculative
// parse can be undone by truncating the arena.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│   Parser    │
//	│  ([]byte)   │     │  (tokens)   │     │  (arena)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                              │
//	                          ┌───────────────────┼───────────────────┐
//	                          ▼                   ▼                   ▼
//	                   ┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	                   │ SymbolTable │     │  Reporter   │     │  ast.File   │
//	                   │ (is type?)  │     │(diagnostics)│     │  (result)   │
//	                   └─────────────┘     └─────────────┘     └─────────────┘
//
// # Usage
//
//	file, diags := parser.ParseFile("shader.sksl", src)
//	for _, d := range diags.Diagnostics() {
//	    fmt.Println(diags.Format(d))
//	}
//
// When the caller owns the symbol table or the reporter, construct the
// parser directly:
//
//	p := parser.New(src, table, reporter, parser.WithMaxDepth(100))
//	file := p.CompilationUnit()
//
// # Types and identifiers
//
// SkSL is not context free: "a * b;" is a declaration when a names a type
// and an expression otherwise. The parser asks its [SymbolTable] and
// registers every struct and enum it declares, so later declarations in the
// same unit see them.
//
// # Speculation
//
// A statement that starts with a type name is first tried as a variable
// declaration. The parser takes a checkpoint, reads "modifiers type name",
// and rewinds to the checkpoint when that fails. Rewinding restores the
// token position, the pushback slot, the arena and the diagnostic count, so
// nothing from the failed attempt is visible afterwards.
//
// # Error recovery
//
// Errors are reported to the [diag.Reporter] and never returned as Go
// errors. A failed declaration or statement is dropped from the tree and
// parsing resumes after the next ';' or at the closing '}' of the enclosing
// block. [Parser.CompilationUnit] always returns a file.
//
// Nesting is limited to [DefaultMaxDepth] levels (see [WithMaxDepth]).
// Exceeding the limit is reported as [diag.TooDeeplyNested].
//
// # Concurrency
//
// A Parser is not safe for concurrent use. Separate parsers may run on
// separate goroutines as long as each has its own symbol table; the keyword
// and layout tables they share are never written after package
// initialization.
package parser
