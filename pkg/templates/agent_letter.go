package templates

import (
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

// AgentLetter introduces the deal to the cooperating agent on the other
// side and is addressed to that agent.
type AgentLetter struct{}

func (AgentLetter) Kind() string  { return "agent-letter" }
func (AgentLetter) Title() string { return "Agent Letter" }

func (t AgentLetter) Render(r deal.Record) (doctree.Document, error) {
	if err := requireFields(r, deal.PropertyAddress, deal.OtherAgentName); err != nil {
		return doctree.Document{}, err
	}

	address := text(r, deal.PropertyAddress)
	party := "buyer"
	if r.Side() == deal.Seller {
		party = "seller"
	}

	terms := doctree.Table(
		labelRow("Property", address),
		moneyRow(r, "Purchase price", deal.PurchasePrice, false),
		moneyRow(r, "Earnest money", deal.EarnestMoney, false),
		dateRow(r, "Contract date", deal.ContractDate),
		dateRow(r, "Closing date", deal.ClosingDate),
		labelRow("Escrow", text(r, deal.EscrowCompany)),
	)
	if len(terms.Children) == 0 {
		terms = nil
	}

	var extra *doctree.Block
	if add := text(r, deal.AdditionalTerms); add != "" {
		extra = doctree.Paragraph("Additional terms: " + add)
	}

	var brokerage *doctree.Block
	if b := text(r, deal.OtherAgentBrokerage); b != "" {
		brokerage = doctree.Paragraph("", doctree.Muted(b))
	}

	tree := doctree.New(
		controls(),
		letterhead(r),
		doctree.Paragraph("Dear "+text(r, deal.OtherAgentName)+","),
		brokerage,
		doctree.Paragraph("Thank you for working with us on ",
			doctree.Strong(address),
			doctree.Text(". I represent the "+party+" in this transaction and wanted to confirm the key terms below."),
		),
		terms,
		extra,
		doctree.Paragraph("Please let me know if anything differs from your records."),
		doctree.Paragraph("Sincerely,"),
		signature(r),
	)

	return doctree.Document{
		Kind:      t.Kind(),
		Title:     t.Title(),
		Subject:   "Re: " + address,
		Recipient: text(r, deal.OtherAgentEmail),
		Tree:      tree,
	}, nil
}

func dateRow(r deal.Record, label string, f deal.Field) *doctree.Block {
	d, ok := r.Date(f)
	if !ok {
		return nil
	}
	return labelRow(label, formatDate(d))
}
