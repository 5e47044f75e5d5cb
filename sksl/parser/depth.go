package parser

import "github.com/dhamidi/sksl/sksl/diag"

// DefaultMaxDepth keeps pathological inputs from exhausting the stack.
const DefaultMaxDepth = 50

// depthGuard counts how far one grammar rule has increased the parse depth
// so that release can undo exactly that much on every return path.
type depthGuard struct {
	p     *Parser
	count int
}

func (p *Parser) newDepth() depthGuard {
	return depthGuard{p: p}
}

func (g *depthGuard) increase() bool {
	p := g.p
	if p.depth >= p.maxDepth {
		p.errorf(p.peek(), diag.TooDeeplyNested, "too deeply nested: exceeded max parse depth of %d", p.maxDepth)
		return false
	}
	p.depth++
	g.count++
	return true
}

func (g *depthGuard) release() {
	g.p.depth -= g.count
	g.count = 0
}
