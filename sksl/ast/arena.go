package ast

import "fmt"

// Arena is the append-only store that owns every node of one parse.
// Only Rewind may shrink it, and only back to a Mark it handed out.
type Arena struct {
	nodes []Node
	// attached records the parent of every AddChild call, in call order, so
	// that Rewind can detach children appended to nodes older than the mark.
	attached []ID
}

// Mark is an opaque arena length recorded by Arena.Mark.
type Mark struct {
	nodes    int
	attached int
}

func (m Mark) Len() int {
	return m.nodes
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) Create(kind Kind, offset int, data any) ID {
	a.nodes = append(a.nodes, Node{Kind: kind, Offset: offset, Data: data})
	return ID(len(a.nodes) - 1)
}

// AddChild appends child to parent's children and returns child.
func (a *Arena) AddChild(parent, child ID) ID {
	a.check(child)
	n := a.Get(parent)
	n.Children = append(n.Children, child)
	a.attached = append(a.attached, parent)
	return child
}

// Get returns the node at id. The pointer is invalidated by the next Create;
// hold on to IDs, not pointers.
func (a *Arena) Get(id ID) *Node {
	a.check(id)
	return &a.nodes[id]
}

func (a *Arena) check(id ID) {
	if id < 0 || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("ast: node id %d out of range [0, %d)", id, len(a.nodes)))
	}
}

func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) Mark() Mark {
	return Mark{nodes: len(a.nodes), attached: len(a.attached)}
}

// Rewind discards every node created and every child attached since m was
// taken. Marks must be rewound in the reverse order they were taken.
func (a *Arena) Rewind(m Mark) {
	if m.nodes > len(a.nodes) || m.attached > len(a.attached) {
		panic(fmt.Sprintf("ast: rewind to mark %d beyond arena length %d", m.nodes, len(a.nodes)))
	}
	for i := len(a.attached) - 1; i >= m.attached; i-- {
		parent := a.attached[i]
		if int(parent) < m.nodes {
			n := &a.nodes[parent]
			n.Children = n.Children[:len(n.Children)-1]
		}
	}
	a.attached = a.attached[:m.attached]
	for i := m.nodes; i < len(a.nodes); i++ {
		a.nodes[i] = Node{}
	}
	a.nodes = a.nodes[:m.nodes]
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (a *Arena) Walk(id ID, fn func(id ID, n *Node, depth int) bool) {
	a.walk(id, 0, fn)
}

func (a *Arena) walk(id ID, depth int, fn func(ID, *Node, int) bool) {
	n := a.Get(id)
	if !fn(id, n, depth) {
		return
	}
	for _, child := range n.Children {
		a.walk(child, depth+1, fn)
	}
}

// File is the result of parsing one compilation unit.
type File struct {
	Name   string
	Source []byte
	Arena  *Arena
	Root   ID
}

func (f *File) Node(id ID) *Node {
	return f.Arena.Get(id)
}

// Declarations returns the top-level children of the root node.
func (f *File) Declarations() []ID {
	return f.Arena.Get(f.Root).Children
}
