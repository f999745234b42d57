package doctree

import "strconv"

// Container groups blocks without adding presentation of its own.
func Container(children ...*Block) *Block {
	return NewBlock(KindContainer, children...)
}

// Heading creates a heading of the given level (1..3).
func Heading(level int, text string) *Block {
	level = min(max(level, 1), 3)
	b := NewBlock(KindHeading)
	b.Text = text
	return b.Set(AttrLevel, strconv.Itoa(level))
}

// Paragraph creates a paragraph. Inline runs may be appended as children.
func Paragraph(text string, inline ...*Block) *Block {
	b := NewBlock(KindParagraph, inline...)
	b.Text = text
	return b
}

// Text creates an inline run.
func Text(text string) *Block {
	b := NewBlock(KindText)
	b.Text = text
	return b
}

// Strong creates an emphasized inline run.
func Strong(text string) *Block {
	return Text(text).WithRole(RoleEmphasis)
}

// Muted creates a secondary inline run.
func Muted(text string) *Block {
	return Text(text).WithRole(RoleSecondaryText)
}

// Link creates a hyperlink. An empty text uses the href as label.
func Link(href, text string) *Block {
	if text == "" {
		text = href
	}
	b := NewBlock(KindLink)
	b.Text = text
	return b.Set(AttrHref, href)
}

// Table creates a table from rows.
func Table(rows ...*Block) *Block {
	return NewBlock(KindTable, rows...)
}

// Row creates a table row from cells.
func Row(cells ...*Block) *Block {
	return NewBlock(KindRow, cells...)
}

// Cell creates a body cell.
func Cell(text string, inline ...*Block) *Block {
	b := NewBlock(KindCell, inline...)
	b.Text = text
	return b
}

// HeaderCell creates a header cell.
func HeaderCell(text string) *Block {
	return Cell(text).Set(AttrHeader, "true")
}

// Image creates an image reference. Dimensions are filled in by the
// transport layer once the source is rasterized.
func Image(src, alt string) *Block {
	return NewBlock(KindImage).Set(AttrSrc, src).Set(AttrAlt, alt)
}

// Divider creates a horizontal rule.
func Divider() *Block {
	return NewBlock(KindDivider)
}

// Button creates an interactive action control.
func Button(label, action string) *Block {
	b := NewBlock(KindButton).Interactive()
	b.Text = label
	return b.Set(AttrAction, action).WithRole(RolePrimaryAction)
}

// Input creates an interactive form control.
func Input(name, value string) *Block {
	b := NewBlock(KindInput).Interactive()
	b.Text = value
	return b.Set(AttrName, name)
}

// Controls groups interactive blocks into a non-transportable toolbar.
func Controls(children ...*Block) *Block {
	return Container(children...).Interactive()
}
