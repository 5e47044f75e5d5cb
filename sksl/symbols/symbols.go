// Package symbols provides the scope-aware registry that tells the parser
// which identifiers name types.
package symbols

import (
	"fmt"
	"sync"
)

// Table is a chain of scopes. The outermost scope holds the builtin types
// and cannot be popped. A Table is safe for concurrent use, so one table may
// be shared by several parsers.
type Table struct {
	mu     sync.RWMutex
	scopes []map[string]struct{}
}

// New returns a table whose root scope holds the builtin types plus any
// extra type names given.
func New(extra ...string) *Table {
	root := make(map[string]struct{}, len(builtinTypes)+len(extra))
	for _, name := range builtinTypes {
		root[name] = struct{}{}
	}
	for _, name := range extra {
		root[name] = struct{}{}
	}
	return &Table{scopes: []map[string]struct{}{root}}
}

// IsType reports whether name is a type in any visible scope.
func (t *Table) IsType(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if _, ok := t.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

// AddType declares name as a type in the innermost scope.
func (t *Table) AddType(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scopes[len(t.scopes)-1][name] = struct{}{}
}

func (t *Table) PushScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scopes = append(t.scopes, make(map[string]struct{}))
}

func (t *Table) PopScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.scopes) == 1 {
		panic("symbols: pop of the root scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Table) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.scopes)
}

var builtinTypes = func() []string {
	names := []string{
		"void",
		"sampler", "sampler1D", "sampler2D", "sampler3D", "samplerCube",
		"sampler2DRect", "samplerExternalOES", "isampler2D",
		"texture2D", "textureExternalOES",
		"image2D", "iimage2D", "subpassInput", "subpassInputMS",
		"fragmentProcessor", "shader", "colorFilter",
	}
	for _, scalar := range []string{"float", "half", "int", "uint", "short", "ushort", "byte", "ubyte", "bool", "double"} {
		names = append(names, scalar)
		for n := 2; n <= 4; n++ {
			names = append(names, fmt.Sprintf("%s%d", scalar, n))
		}
	}
	for _, scalar := range []string{"float", "half", "double"} {
		for c := 2; c <= 4; c++ {
			for r := 2; r <= 4; r++ {
				names = append(names, fmt.Sprintf("%s%dx%d", scalar, c, r))
			}
		}
	}
	for _, prefix := range []string{"vec", "ivec", "uvec", "bvec", "mat"} {
		for n := 2; n <= 4; n++ {
			names = append(names, fmt.Sprintf("%s%d", prefix, n))
		}
	}
	return names
}()

// Builtins returns the names of the builtin types.
func Builtins() []string {
	return append([]string(nil), builtinTypes...)
}
