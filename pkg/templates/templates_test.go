package templates_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
)

func fullRecord(t *testing.T, side deal.Party) deal.Record {
	t.Helper()
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }
	r, err := deal.New("deal-42", map[deal.Field]any{
		deal.PropertyAddress:     "12 Elm St, Springfield",
		deal.Side:                side,
		deal.BuyerName:           "Ann Buyer",
		deal.BuyerEmail:          "buyer@example.com",
		deal.SellerName:          "Sam Seller",
		deal.SellerEmail:         "seller@example.com",
		deal.AgentName:           "Alex Agent",
		deal.AgentEmail:          "alex@brokerage.test",
		deal.AgentPhone:          "555-0100",
		deal.BrokerageName:       "Acme Realty",
		deal.BrokerageLogo:       "https://cdn.example.com/logo.png",
		deal.OtherAgentName:      "Olive Other",
		deal.OtherAgentEmail:     "olive@other.test",
		deal.OtherAgentBrokerage: "Other Homes",
		deal.PropertyPhoto:       "s3://photos/elm.jpg",
		deal.ListingURL:          "https://listings.example.com/12-elm",
		deal.EscrowCompany:       "First Title",
		deal.ContractDate:        day(time.February, 1),
		deal.InspectionDeadline:  day(time.February, 10),
		deal.ClosingDate:         day(time.March, 14),
		deal.PurchasePrice:       deal.Money(45000000),
		deal.ClosingCosts:        deal.Money(900000),
		deal.EarnestMoney:        deal.Money(1000000),
		deal.LoanAmount:          deal.Money(36000000),
		deal.SellerCredit:        deal.Money(250000),
		deal.CommissionAmount:    deal.Money(2700000),
		deal.AdImpressions:       12000,
		deal.AdClicks:            300,
		deal.AdLeads:             6,
		deal.AdSpend:             deal.Money(60000),
		deal.DaysOnMarket:        9,
	})
	require.NoError(t, err)
	return r
}

func findAll(tree *doctree.Tree, match func(*doctree.Block) bool) []*doctree.Block {
	var out []*doctree.Block
	tree.Walk(func(b *doctree.Block) bool {
		if match(b) {
			out = append(out, b)
		}
		return true
	})
	return out
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := templates.Default()
	assert.Equal(t, []string{"settlement-statement", "agent-letter", "important-dates", "ad-results"}, reg.Kinds())

	tpl, err := reg.Lookup("agent-letter")
	require.NoError(t, err)
	assert.Equal(t, "Agent Letter", tpl.Title())

	_, err = reg.Lookup("lease")
	assert.ErrorIs(t, err, templates.ErrUnknownTemplate)

	_, err = templates.NewRegistry(templates.AgentLetter{}, templates.AgentLetter{})
	assert.ErrorIs(t, err, templates.ErrDuplicateKind)
}

func TestEveryTemplateCarriesInteractiveControls(t *testing.T) {
	t.Parallel()

	rec := fullRecord(t, deal.Buyer)
	for _, tpl := range templates.Default().Templates() {
		t.Run(tpl.Kind(), func(t *testing.T) {
			t.Parallel()

			doc, err := tpl.Render(rec)
			require.NoError(t, err)
			assert.Equal(t, tpl.Kind(), doc.Kind)
			assert.NotEmpty(t, doc.Subject)

			buttons := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Kind == doctree.KindButton })
			require.NotEmpty(t, buttons)
			for _, b := range buttons {
				assert.False(t, b.Transportable)
			}
			inputs := findAll(doc.Tree, func(b *doctree.Block) bool {
				return b.Kind == doctree.KindInput && b.Attr(doctree.AttrName) == templates.InputMailClient
			})
			assert.Len(t, inputs, 1)

			logos := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Role() == doctree.RoleLogo })
			require.Len(t, logos, 1)
			w, ok := logos[0].IntAttr(doctree.AttrTargetWidth)
			assert.True(t, ok)
			assert.Equal(t, templates.LogoWidth, w)
		})
	}
}

func TestSettlementStatement(t *testing.T) {
	t.Parallel()

	t.Run("buyer side", func(t *testing.T) {
		t.Parallel()

		doc, err := templates.SettlementStatement{}.Render(fullRecord(t, deal.Buyer))
		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", doc.Recipient)
		assert.Equal(t, "Settlement Statement - 12 Elm St, Springfield", doc.Subject)

		content := doc.Tree.Root.PlainText()
		assert.Contains(t, content, "$450,000.00")
		assert.Contains(t, content, "-$10,000.00")
		assert.Contains(t, content, "Estimated cash to close")
		assert.Contains(t, content, "$86,500.00")
		assert.Contains(t, content, "March 14, 2026")
		assert.Contains(t, content, "Hi Ann Buyer,")

		totals := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Role() == doctree.RoleTotal })
		assert.Len(t, totals, 2)
	})

	t.Run("seller side", func(t *testing.T) {
		t.Parallel()

		doc, err := templates.SettlementStatement{}.Render(fullRecord(t, deal.Seller))
		require.NoError(t, err)
		assert.Equal(t, "seller@example.com", doc.Recipient)

		content := doc.Tree.Root.PlainText()
		assert.Contains(t, content, "Estimated net proceeds")
		// 450000 - 27000 - 9000 - 2500
		assert.Contains(t, content, "$411,500.00")
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		_, err := templates.SettlementStatement{}.Render(deal.MustNew("d", map[deal.Field]any{
			deal.PropertyAddress: "1 Main",
		}))
		require.ErrorIs(t, err, templates.ErrMissingField)
		assert.Contains(t, err.Error(), "purchase_price")
		assert.Contains(t, err.Error(), "closing_date")
	})
}

func TestAgentLetter(t *testing.T) {
	t.Parallel()

	doc, err := templates.AgentLetter{}.Render(fullRecord(t, deal.Seller))
	require.NoError(t, err)
	assert.Equal(t, "olive@other.test", doc.Recipient)
	assert.Equal(t, "Re: 12 Elm St, Springfield", doc.Subject)

	content := doc.Tree.Root.PlainText()
	assert.Contains(t, content, "Dear Olive Other,")
	assert.Contains(t, content, "I represent the seller")
	assert.Contains(t, content, "First Title")

	_, err = templates.AgentLetter{}.Render(deal.MustNew("d", map[deal.Field]any{
		deal.PropertyAddress: "1 Main",
		deal.OtherAgentName:  "  ",
	}))
	assert.ErrorIs(t, err, templates.ErrMissingField)
}

func TestImportantDates(t *testing.T) {
	t.Parallel()

	doc, err := templates.ImportantDates{}.Render(fullRecord(t, deal.Buyer))
	require.NoError(t, err)

	rows := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Kind == doctree.KindRow })
	require.Len(t, rows, 4) // header + contract, inspection, closing
	assert.Equal(t, "Contract accepted", rows[1].Children[0].Text)
	assert.Equal(t, "February 10, 2026", rows[2].Children[1].Text)
	assert.Equal(t, "Closing", rows[3].Children[0].Text)

	_, err = templates.ImportantDates{}.Render(deal.MustNew("d", map[deal.Field]any{
		deal.PropertyAddress: "1 Main",
	}))
	assert.ErrorIs(t, err, templates.ErrMissingField)
}

func TestAdResults(t *testing.T) {
	t.Parallel()

	t.Run("full report", func(t *testing.T) {
		t.Parallel()

		doc, err := templates.AdResults{}.Render(fullRecord(t, deal.Seller))
		require.NoError(t, err)
		assert.Equal(t, "seller@example.com", doc.Recipient)
		assert.Equal(t, "Ad Results - 12 Elm St, Springfield", doc.Subject)

		content := doc.Tree.Root.PlainText()
		assert.Contains(t, content, "12,000")
		assert.Contains(t, content, "2.50%")
		assert.Contains(t, content, "$600.00")
		assert.Contains(t, content, "$100.00")

		images := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Kind == doctree.KindImage })
		var qr *doctree.Block
		for _, img := range images {
			if strings.HasPrefix(img.Attr(doctree.AttrSrc), "data:image/png;base64,") {
				qr = img
			}
		}
		require.NotNil(t, qr)
		assert.Equal(t, "120", qr.Attr(doctree.AttrTargetWidth))
	})

	t.Run("no seller email and no metrics", func(t *testing.T) {
		t.Parallel()

		doc, err := templates.AdResults{}.Render(deal.MustNew("d", map[deal.Field]any{
			deal.PropertyAddress: "1 Main",
			deal.ListingURL:      "not a url",
		}))
		require.NoError(t, err)
		assert.Empty(t, doc.Recipient)
		assert.Contains(t, doc.Tree.Root.PlainText(), "No advertising results")

		images := findAll(doc.Tree, func(b *doctree.Block) bool { return b.Kind == doctree.KindImage })
		assert.Empty(t, images)
	})
}
