package templates

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

// Control identifiers shared by every document view.
const (
	ActionCopyAndEmail = "copy-and-email"
	ActionPrint        = "print"
	InputMailClient    = "mail-client"
)

// LogoWidth is the raster width of letterhead logos.
const LogoWidth = 175

func requireFields(r deal.Record, fields ...deal.Field) error {
	var missing []string
	for _, f := range fields {
		present := r.Has(f)
		if t, _ := deal.TypeOf(f); t == deal.TypeString {
			_, present = r.Text(f)
		}
		if !present {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

func text(r deal.Record, f deal.Field) string {
	s, _ := r.Text(f)
	return s
}

// clientEmail returns the email of the represented client. Dual agency
// prefers the buyer.
func clientEmail(r deal.Record) string {
	switch r.Side() {
	case deal.Seller:
		return text(r, deal.SellerEmail)
	case deal.Dual:
		if e := text(r, deal.BuyerEmail); e != "" {
			return e
		}
		return text(r, deal.SellerEmail)
	default:
		return text(r, deal.BuyerEmail)
	}
}

func clientName(r deal.Record) string {
	if r.Side() == deal.Seller {
		return text(r, deal.SellerName)
	}
	return text(r, deal.BuyerName)
}

// letterhead renders the brokerage logo and name.
func letterhead(r deal.Record) *doctree.Block {
	head := doctree.Container().Set(doctree.AttrClass, "letterhead")
	if logo := text(r, deal.BrokerageLogo); logo != "" {
		alt := text(r, deal.BrokerageName)
		if alt == "" {
			alt = "Logo"
		}
		head.Append(doctree.Image(logo, alt).WithRole(doctree.RoleLogo).TargetWidth(LogoWidth))
	}
	if name := text(r, deal.BrokerageName); name != "" {
		head.Append(doctree.Paragraph("", doctree.Strong(name)))
	}
	if len(head.Children) == 0 {
		return nil
	}
	return head
}

// signature renders the agent sign-off block.
func signature(r deal.Record) *doctree.Block {
	sig := doctree.Container().WithRole(doctree.RoleSignature).Set(doctree.AttrClass, "signature")
	if img := text(r, deal.AgentSignature); img != "" {
		sig.Append(doctree.Image(img, "Signature").WithRole(doctree.RoleSignature).TargetWidth(LogoWidth))
	}
	if name := text(r, deal.AgentName); name != "" {
		sig.Append(doctree.Paragraph("", doctree.Strong(name)))
	}
	var contact []string
	for _, f := range []deal.Field{deal.AgentPhone, deal.AgentEmail, deal.BrokerageName} {
		if v := text(r, f); v != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		sig.Append(doctree.Paragraph("", doctree.Muted(strings.Join(contact, " | "))))
	}
	if len(sig.Children) == 0 {
		return nil
	}
	return sig
}

// controls is the on-screen toolbar every document carries.
func controls() *doctree.Block {
	return doctree.Controls(
		doctree.Button("Copy & Email", ActionCopyAndEmail),
		doctree.Button("Print", ActionPrint).WithRole(doctree.RoleSecondaryAction),
		doctree.Input(InputMailClient, ""),
	)
}

// labelRow renders a two column table row. Empty values are skipped.
func labelRow(label, value string) *doctree.Block {
	if value == "" {
		return nil
	}
	return doctree.Row(
		doctree.Cell(label).WithRole(doctree.RoleLabel),
		doctree.Cell(value).Align("right"),
	)
}

func moneyRow(r deal.Record, label string, f deal.Field, negate bool) *doctree.Block {
	m, ok := r.Money(f)
	if !ok {
		return nil
	}
	if negate {
		m = -m
	}
	return labelRow(label, formatMoney(m))
}

func subjectFor(title string, r deal.Record) string {
	if addr := text(r, deal.PropertyAddress); addr != "" {
		return title + " - " + addr
	}
	return title
}
