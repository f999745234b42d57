package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
)

// datastarScript is the client bundle loaded by document pages.
const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

// NoticeID is the element id notices are patched into.
const NoticeID = "notice"

// Page is what a document page needs besides the document.
type Page struct {
	ShareURL   string
	Clients    []mailclient.Descriptor
	MailClient string
}

// DocumentPage renders the on-screen document with its controls. Blocks are
// styled by class: "dd-<kind>" plus "dd-<role>" when the block has a role.
func DocumentPage(doc doctree.Document, page Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string]string{"mail_client": page.MailClient})
		if err != nil {
			return err
		}

		head := el(atom.Head,
			withAttrs(el(atom.Meta), "charset", "utf-8"),
			el(atom.Title, text(doc.Title)),
			withAttrs(el(atom.Script), "type", "module", "src", datastarScript),
		)
		body := withAttrs(el(atom.Body,
			notice("", "", ""),
			withAttrs(el(atom.Article, (&view{page: page}).block(doc.Tree.Root)), "class", "dd-document"),
		), "data-signals", string(signals))

		if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
			return err
		}
		return html.Render(w, el(atom.Html, head, body))
	})
}

// Notice renders the notice element. An empty url renders no link.
func Notice(status, message, url string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return html.Render(w, notice(status, message, url))
	})
}

func notice(status, message, url string) *html.Node {
	class := "dd-notice"
	if status != "" {
		class += " dd-notice-" + status
	}
	n := withAttrs(el(atom.Div), "id", NoticeID, "class", class, "role", "status")
	if message != "" {
		n.AppendChild(el(atom.P, text(message)))
	}
	if url != "" {
		n.AppendChild(withAttrs(el(atom.A, text("Open email")),
			"href", url, "target", "_blank", "rel", "noopener"))
	}
	return n
}

type view struct {
	page Page
}

func (v *view) block(b *doctree.Block) *html.Node {
	var n *html.Node
	switch b.Kind {
	case doctree.KindButton:
		n = v.button(b)
	case doctree.KindInput:
		n = v.input(b)
	default:
		n = el(tagFor(b))
		for _, key := range []string{doctree.AttrHref, doctree.AttrSrc, doctree.AttrAlt, doctree.AttrWidth, doctree.AttrHeight} {
			if val := b.Attr(key); val != "" {
				n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
			}
		}
		if span, ok := b.IntAttr(doctree.AttrColspan); ok && span > 1 {
			n.Attr = append(n.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(span)})
		}
		if b.Text != "" && b.Kind != doctree.KindImage && b.Kind != doctree.KindDivider {
			n.AppendChild(text(b.Text))
		}
		for _, c := range b.Children {
			n.AppendChild(v.block(c))
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: classes(b)})
	return n
}

func (v *view) button(b *doctree.Block) *html.Node {
	n := withAttrs(el(atom.Button, text(b.Text)), "type", "button")
	switch b.Attr(doctree.AttrAction) {
	case templates.ActionCopyAndEmail:
		n = withAttrs(n, "data-on-click", fmt.Sprintf("@post('%s')", v.page.ShareURL))
	case templates.ActionPrint:
		n = withAttrs(n, "data-on-click", "window.print()")
	}
	return n
}

func (v *view) input(b *doctree.Block) *html.Node {
	if b.Attr(doctree.AttrName) != templates.InputMailClient {
		return withAttrs(el(atom.Input), "name", b.Attr(doctree.AttrName), "value", b.Text)
	}
	sel := withAttrs(el(atom.Select),
		"name", templates.InputMailClient,
		"data-bind", "mail_client",
		"data-on-change", "@put('/preferences/mail-client')",
	)
	for _, c := range v.page.Clients {
		opt := withAttrs(el(atom.Option, text(c.Label)), "value", c.ID)
		if c.ID == v.page.MailClient {
			opt = withAttrs(opt, "selected", "")
		}
		sel.AppendChild(opt)
	}
	return sel
}

func classes(b *doctree.Block) string {
	cs := []string{"dd-" + string(b.Kind)}
	if r := b.Role(); r != "" {
		cs = append(cs, "dd-"+string(r))
	}
	if extra := b.Attr(doctree.AttrClass); extra != "" {
		cs = append(cs, extra)
	}
	return strings.Join(cs, " ")
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
	case doctree.KindText:
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
	}
	return atom.Div
}

func el(a atom.Atom, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// withAttrs appends key/value pairs to n.
func withAttrs(n *html.Node, kv ...string) *html.Node {
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}
