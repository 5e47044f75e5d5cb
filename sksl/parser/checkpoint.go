package parser

import (
	"fmt"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// checkpoint is a saved parser state for speculative parsing. Checkpoints
// nest like a stack: the most recently taken one must be rewound or
// released first.
type checkpoint struct {
	p           *Parser
	index       int
	lexerOffset int32
	pushed      lexer.Token
	hasPushback bool
	mark        ast.Mark
	errorCount  int
	eofReported bool
	done        bool
}

func (p *Parser) checkpoint() checkpoint {
	cp := checkpoint{
		p:           p,
		index:       p.live,
		lexerOffset: p.lexer.Checkpoint(),
		pushed:      p.pushed,
		hasPushback: p.hasPushback,
		mark:        p.arena.Mark(),
		errorCount:  p.errors.ErrorCount(),
		eofReported: p.eofReported,
	}
	p.live++
	return cp
}

func (cp *checkpoint) pop(action string) {
	if cp.done {
		panic(fmt.Sprintf("parser: %s of a finished checkpoint", action))
	}
	if cp.index != cp.p.live-1 {
		panic(fmt.Sprintf("parser: %s of checkpoint %d while checkpoint %d is still live", action, cp.index, cp.p.live-1))
	}
	cp.p.live--
	cp.done = true
}

// rewind restores the cursor, the pushback slot, the arena and the error
// count to their values when the checkpoint was taken.
func (cp *checkpoint) rewind() {
	cp.pop("rewind")
	p := cp.p
	p.lexer.Rewind(cp.lexerOffset)
	p.pushed = cp.pushed
	p.hasPushback = cp.hasPushback
	p.arena.Rewind(cp.mark)
	p.errors.SetErrorCount(cp.errorCount)
	p.eofReported = cp.eofReported
}

// release drops a checkpoint that will not be rewound.
func (cp *checkpoint) release() {
	cp.pop("release")
}
