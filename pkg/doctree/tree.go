package doctree

// Tree is a rendered presentation tree rooted at a container block.
type Tree struct {
	Root *Block
}

// New creates a tree whose root container holds the given blocks.
func New(blocks ...*Block) *Tree {
	return &Tree{Root: Container(blocks...)}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{Root: t.Root.Clone()}
}

// Equal reports whether both trees are structurally identical.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Root.Equal(o.Root)
}

// Walk visits every block of the tree in document order.
func (t *Tree) Walk(fn func(*Block) bool) {
	if t == nil {
		return
	}
	t.Root.Walk(fn)
}

// Kinds returns the distinct block kinds present in the tree, in order of
// first appearance.
func (t *Tree) Kinds() []Kind {
	seen := map[Kind]bool{}
	var out []Kind
	t.Walk(func(b *Block) bool {
		if !seen[b.Kind] {
			seen[b.Kind] = true
			out = append(out, b.Kind)
		}
		return true
	})
	return out
}

// Document is the output of a document template: the tree plus the routing
// metadata needed to hand it to a mail client.
type Document struct {
	Kind      string
	Title     string
	Subject   string
	Recipient string // may be empty when the document has no single addressee
	Tree      *Tree
}
