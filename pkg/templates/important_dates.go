package templates

import (
	"fmt"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

// milestones lists the contract dates in chronological contract order.
var milestones = []struct {
	field deal.Field
	label string
}{
	{deal.ContractDate, "Contract accepted"},
	{deal.InspectionDeadline, "Inspection deadline"},
	{deal.AppraisalDeadline, "Appraisal deadline"},
	{deal.FinancingDeadline, "Financing deadline"},
	{deal.FinalWalkthroughDate, "Final walkthrough"},
	{deal.ClosingDate, "Closing"},
	{deal.PossessionDate, "Possession"},
}

// ImportantDates lists the contract milestones for the represented client.
type ImportantDates struct{}

func (ImportantDates) Kind() string  { return "important-dates" }
func (ImportantDates) Title() string { return "Important Dates" }

func (t ImportantDates) Render(r deal.Record) (doctree.Document, error) {
	if err := requireFields(r, deal.PropertyAddress); err != nil {
		return doctree.Document{}, err
	}

	rows := []*doctree.Block{
		doctree.Row(doctree.HeaderCell("Milestone"), doctree.HeaderCell("Date").Align("right")),
	}
	for _, m := range milestones {
		rows = append(rows, dateRow(r, m.label, m.field))
	}
	rows = compactRows(rows)
	if len(rows) == 1 {
		return doctree.Document{}, fmt.Errorf("%w: no contract dates", ErrMissingField)
	}

	tree := doctree.New(
		controls(),
		letterhead(r),
		doctree.Heading(1, t.Title()),
		doctree.Paragraph("", doctree.Strong(text(r, deal.PropertyAddress))),
		doctree.Paragraph("Here are the dates to keep in mind for your transaction. Deadlines end at 5:00 PM local time unless your contract says otherwise."),
		doctree.Table(rows...),
		doctree.Paragraph("Missing a deadline can affect your rights under the contract. Reach out with any questions.").WithRole(doctree.RoleNotice),
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

func compactRows(rows []*doctree.Block) []*doctree.Block {
	out := rows[:0]
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
