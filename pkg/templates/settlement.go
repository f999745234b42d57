package templates

import (
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

// SettlementStatement itemizes the estimated closing figures for the
// represented client and is addressed to that client.
type SettlementStatement struct{}

func (SettlementStatement) Kind() string  { return "settlement-statement" }
func (SettlementStatement) Title() string { return "Settlement Statement" }

func (t SettlementStatement) Render(r deal.Record) (doctree.Document, error) {
	if err := requireFields(r, deal.PropertyAddress, deal.PurchasePrice, deal.ClosingDate); err != nil {
		return doctree.Document{}, err
	}

	closing, _ := r.Date(deal.ClosingDate)
	price, _ := r.Money(deal.PurchasePrice)

	var items []*doctree.Block
	var totalLabel string
	total := price
	add := func(f deal.Field, sign deal.Money) {
		if m, ok := r.Money(f); ok {
			total += sign * m
		}
	}

	if r.Side() == deal.Seller {
		totalLabel = "Estimated net proceeds"
		items = []*doctree.Block{
			moneyRow(r, "Sale price", deal.PurchasePrice, false),
			moneyRow(r, "Commission", deal.CommissionAmount, true),
			moneyRow(r, "Closing costs", deal.ClosingCosts, true),
			moneyRow(r, "Credit to buyer", deal.SellerCredit, true),
		}
		add(deal.CommissionAmount, -1)
		add(deal.ClosingCosts, -1)
		add(deal.SellerCredit, -1)
	} else {
		totalLabel = "Estimated cash to close"
		items = []*doctree.Block{
			moneyRow(r, "Purchase price", deal.PurchasePrice, false),
			moneyRow(r, "Closing costs", deal.ClosingCosts, false),
			moneyRow(r, "Earnest money deposit", deal.EarnestMoney, true),
			moneyRow(r, "Loan amount", deal.LoanAmount, true),
			moneyRow(r, "Seller credit", deal.SellerCredit, true),
		}
		add(deal.ClosingCosts, 1)
		add(deal.EarnestMoney, -1)
		add(deal.LoanAmount, -1)
		add(deal.SellerCredit, -1)
	}

	rows := append([]*doctree.Block{
		doctree.Row(doctree.HeaderCell("Item"), doctree.HeaderCell("Amount").Align("right")),
	}, items...)
	rows = append(rows, doctree.Row(
		doctree.Cell(totalLabel).WithRole(doctree.RoleTotal),
		doctree.Cell(formatMoney(total)).WithRole(doctree.RoleTotal).Align("right"),
	))

	var greeting *doctree.Block
	if name := clientName(r); name != "" {
		greeting = doctree.Paragraph("Hi " + name + ",")
	}

	tree := doctree.New(
		controls(),
		letterhead(r),
		doctree.Heading(1, t.Title()),
		doctree.Paragraph("", doctree.Strong(text(r, deal.PropertyAddress))),
		doctree.Paragraph("", doctree.Muted("Closing date: "+formatDate(closing))),
		greeting,
		doctree.Paragraph("Below are the estimated figures for your closing. Final numbers will come from the settlement agent."),
		doctree.Table(rows...),
		escrowNote(r),
		doctree.Divider(),
		signature(r),
	)

	return doctree.Document{
		Kind:      t.Kind(),
		Title:     t.Title(),
		Subject:   subjectFor(t.Title(), r),
		Recipient: clientEmail(r),
		Tree:      tree,
	}, nil
}

func escrowNote(r deal.Record) *doctree.Block {
	company := text(r, deal.EscrowCompany)
	if company == "" {
		return nil
	}
	return doctree.Paragraph("Escrow and settlement services by " + company + ".").WithRole(doctree.RoleNotice)
}
