package doctree

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the structural type of a block.
type Kind string

const (
	KindContainer Kind = "container"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindText      Kind = "text" // inline run inside a paragraph, cell or link
	KindLink      Kind = "link"
	KindTable     Kind = "table"
	KindRow       Kind = "row"
	KindCell      Kind = "cell"
	KindImage     Kind = "image"
	KindDivider   Kind = "divider"
	KindButton    Kind = "button"
	KindInput     Kind = "input"
)

// Kinds lists every kind this package can construct.
func Kinds() []Kind {
	return []Kind{
		KindContainer, KindHeading, KindParagraph, KindText, KindLink,
		KindTable, KindRow, KindCell, KindImage, KindDivider,
		KindButton, KindInput,
	}
}

// Role is the logical presentation role of a block.
type Role string

const (
	RolePrimaryAction   Role = "primary-action"
	RoleSecondaryAction Role = "secondary-action"
	RoleSecondaryText   Role = "secondary-text"
	RoleEmphasis        Role = "emphasis"
	RoleLabel           Role = "label"
	RoleTotal           Role = "total"
	RoleLogo            Role = "logo"
	RolePhoto           Role = "photo"
	RoleSignature       Role = "signature"
	RoleNotice          Role = "notice"
)

// Attribute keys understood by the transport layer.
const (
	AttrRole        = "role"
	AttrLevel       = "level"
	AttrAlign       = "align"
	AttrHeader      = "header"
	AttrSrc         = "src"
	AttrAlt         = "alt"
	AttrWidth       = "width"
	AttrHeight      = "height"
	AttrHref        = "href"
	AttrColspan     = "colspan"
	AttrTargetWidth = "target-width"
	AttrAction      = "action"
	AttrName        = "name"
	AttrStyle       = "style"
	AttrClass       = "class"
)

// Attributes holds style-relevant key/value pairs of a block.
type Attributes map[string]string

// Block is a single node of a presentation tree.
type Block struct {
	Kind          Kind
	Attrs         Attributes
	Text          string
	Transportable bool
	Children      []*Block
}

// NewBlock creates a transportable block of the given kind.
func NewBlock(kind Kind, children ...*Block) *Block {
	return &Block{
		Kind:          kind,
		Attrs:         Attributes{},
		Transportable: true,
		Children:      compact(children),
	}
}

// Attr returns the attribute value or an empty string.
func (b *Block) Attr(key string) string {
	if b == nil || b.Attrs == nil {
		return ""
	}
	return b.Attrs[key]
}

// IntAttr parses an integer attribute. ok is false when the attribute is
// missing or not a number.
func (b *Block) IntAttr(key string) (int, bool) {
	v := b.Attr(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set stores an attribute and returns the block for chaining.
func (b *Block) Set(key, value string) *Block {
	if b.Attrs == nil {
		b.Attrs = Attributes{}
	}
	b.Attrs[key] = value
	return b
}

// Unset removes an attribute.
func (b *Block) Unset(key string) *Block {
	delete(b.Attrs, key)
	return b
}

// WithRole sets the logical role of the block.
func (b *Block) WithRole(r Role) *Block {
	return b.Set(AttrRole, string(r))
}

// Role returns the logical role of the block.
func (b *Block) Role() Role {
	return Role(b.Attr(AttrRole))
}

// Align sets horizontal alignment (left, center, right).
func (b *Block) Align(a string) *Block {
	return b.Set(AttrAlign, a)
}

// Span sets the number of columns a cell spans.
func (b *Block) Span(n int) *Block {
	if n <= 1 {
		return b.Unset(AttrColspan)
	}
	return b.Set(AttrColspan, strconv.Itoa(n))
}

// TargetWidth overrides the raster width used for an image block.
func (b *Block) TargetWidth(px int) *Block {
	return b.Set(AttrTargetWidth, strconv.Itoa(px))
}

// Interactive marks the block as meaningful only in the on-screen view.
func (b *Block) Interactive() *Block {
	b.Transportable = false
	return b
}

// Append adds children, skipping nil blocks.
func (b *Block) Append(children ...*Block) *Block {
	b.Children = append(b.Children, compact(children)...)
	return b
}

// Clone returns a deep copy of the block and its subtree.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := &Block{
		Kind:          b.Kind,
		Attrs:         maps.Clone(b.Attrs),
		Text:          b.Text,
		Transportable: b.Transportable,
	}
	if c.Attrs == nil {
		c.Attrs = Attributes{}
	}
	if len(b.Children) > 0 {
		c.Children = make([]*Block, len(b.Children))
		for i, child := range b.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports whether two subtrees are structurally identical.
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Kind != o.Kind || b.Text != o.Text || b.Transportable != o.Transportable {
		return false
	}
	if len(b.Attrs) != len(o.Attrs) || !maps.Equal(b.Attrs, o.Attrs) {
		return false
	}
	return slices.EqualFunc(b.Children, o.Children, func(x, y *Block) bool { return x.Equal(y) })
}

// Walk visits the block and its descendants depth-first in document order.
// Returning false from fn skips the children of the visited block.
func (b *Block) Walk(fn func(*Block) bool) {
	if b == nil {
		return
	}
	if !fn(b) {
		return
	}
	for _, child := range b.Children {
		child.Walk(fn)
	}
}

// PlainText concatenates the text runs of the subtree in document order.
func (b *Block) PlainText() string {
	var sb strings.Builder
	b.Walk(func(n *Block) bool {
		sb.WriteString(n.Text)
		return true
	})
	return sb.String()
}

func compact(blocks []*Block) []*Block {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]*Block, 0, len(blocks))
	for _, b := range blocks {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
