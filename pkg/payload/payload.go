package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

var (
	ErrEmptyTree     = errors.New("payload: empty presentation tree")
	ErrNotNormalized = errors.New("payload: tree contains interactive blocks")
	ErrRender        = errors.New("payload: html serialization failed")
)

// Payload is an email body in rich and plain form.
type Payload struct {
	HTML      string
	PlainText string
}

// emitted lists the block attributes copied to HTML, in output order.
var emitted = []string{
	doctree.AttrHref,
	doctree.AttrSrc,
	doctree.AttrAlt,
	doctree.AttrWidth,
	doctree.AttrHeight,
	doctree.AttrColspan,
	doctree.AttrStyle,
}

// Build serializes tree. The tree must not contain interactive blocks.
func Build(tree *doctree.Tree) (Payload, error) {
	if tree == nil || tree.Root == nil {
		return Payload{}, ErrEmptyTree
	}
	var interactive []string
	tree.Walk(func(b *doctree.Block) bool {
		if !b.Transportable {
			interactive = append(interactive, string(b.Kind))
			return false
		}
		return true
	})
	if len(interactive) > 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrNotNormalized, strings.Join(interactive, ", "))
	}

	w := &writer{}
	root := w.block(tree.Root)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return Payload{}, errors.Join(ErrRender, err)
	}
	return Payload{
		HTML:      sb.String(),
		PlainText: strings.TrimSpace(strings.Join(w.units, "\n\n")),
	}, nil
}

// writer accumulates plain text units while building HTML nodes.
type writer struct {
	units []string
}

func (w *writer) emit(s string) {
	if s = strings.TrimSpace(s); s != "" {
		w.units = append(w.units, s)
	}
}

// block converts a block-level node and records its plain text unit.
func (w *writer) block(b *doctree.Block) *html.Node {
	switch b.Kind {
	case doctree.KindContainer:
		n := element(atom.Div, b)
		for _, c := range b.Children {
			n.AppendChild(w.block(c))
		}
		return n

	case doctree.KindTable:
		n := element(atom.Table, b)
		var rows []string
		for _, r := range b.Children {
			rn, line := w.row(r)
			n.AppendChild(rn)
			if strings.TrimSpace(line) != "" {
				rows = append(rows, line)
			}
		}
		w.emit(strings.Join(rows, "\n"))
		return n

	case doctree.KindImage, doctree.KindDivider:
		n, _ := inline(b)
		return n

	default:
		n, text := inline(b)
		w.emit(text)
		return n
	}
}

// row converts a table row; cells are joined by tabs in plain text.
func (w *writer) row(r *doctree.Block) (*html.Node, string) {
	if r.Kind != doctree.KindRow {
		n, text := inline(r)
		return n, text
	}
	n := element(atom.Tr, r)
	cells := make([]string, 0, len(r.Children))
	for _, c := range r.Children {
		cn, text := inline(c)
		n.AppendChild(cn)
		cells = append(cells, strings.TrimSpace(text))
	}
	return n, strings.Join(cells, "\t")
}

// inline converts b and its subtree, returning the node and its text.
func inline(b *doctree.Block) (*html.Node, string) {
	n := element(tagFor(b), b)
	var sb strings.Builder
	if b.Text != "" && b.Kind != doctree.KindImage && b.Kind != doctree.KindDivider {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: b.Text})
		sb.WriteString(b.Text)
	}
	for _, c := range b.Children {
		cn, text := inline(c)
		n.AppendChild(cn)
		sb.WriteString(text)
	}
	// links contribute their visible text only; the target stays in href
	if b.Kind == doctree.KindImage || b.Kind == doctree.KindDivider {
		return n, ""
	}
	return n, sb.String()
}

func tagFor(b *doctree.Block) atom.Atom {
	switch b.Kind {
	case doctree.KindHeading:
		switch b.Attr(doctree.AttrLevel) {
		case "2":
			return atom.H2
		case "3":
			return atom.H3
		default:
			return atom.H1
		}
	case doctree.KindParagraph:
		return atom.P
	case doctree.KindText, doctree.KindButton, doctree.KindInput:
		return atom.Span
	case doctree.KindLink:
		return atom.A
	case doctree.KindTable:
		return atom.Table
	case doctree.KindRow:
		return atom.Tr
	case doctree.KindCell:
		if b.Attr(doctree.AttrHeader) == "true" {
			return atom.Th
		}
		return atom.Td
	case doctree.KindImage:
		return atom.Img
	case doctree.KindDivider:
		return atom.Hr
	default:
		return atom.Div
	}
}

func element(a atom.Atom, b *doctree.Block) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, key := range emitted {
		v := b.Attr(key)
		if v == "" {
			continue
		}
		if key == doctree.AttrColspan {
			if span, err := strconv.Atoi(v); err != nil || span < 2 {
				continue
			}
		}
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: v})
	}
	return n
}

// Document wraps the HTML fragment of p into a complete email document.
func Document(p Payload, title string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString(`<meta charset="utf-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	sb.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	sb.WriteString("</head>\n")
	sb.WriteString(`<body style="margin: 0; padding: 16px; background-color: #ffffff">` + "\n")
	sb.WriteString(p.HTML)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
