package payload_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/payload"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
	"github.com/dmitrymomot/dealdocs/pkg/transport"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestScenarioA(t *testing.T) {
	t.Parallel()

	tree := doctree.New(doctree.Button("Send", "send"), doctree.Paragraph("Thanks"))
	normalized, err := transport.New().Normalize(context.Background(), tree)
	require.NoError(t, err)

	p, err := payload.Build(normalized)
	require.NoError(t, err)
	assert.Equal(t, "Thanks", p.PlainText)

	doc := parse(t, p.HTML)
	assert.Equal(t, 1, doc.Find("p").Length())
	assert.Equal(t, "Thanks", doc.Find("p").Text())
	assert.Zero(t, doc.Find("button").Length())
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tree := doctree.New(
		doctree.Heading(2, "Important Dates").Set(doctree.AttrStyle, "font-weight: bold"),
		doctree.Paragraph("Dear ", doctree.Strong("Ann"), doctree.Text(",")),
		doctree.Image("data:image/png;base64,AA", "logo").
			Set(doctree.AttrWidth, "175").
			Set(doctree.AttrHeight, "88").
			TargetWidth(175).
			WithRole(doctree.RoleLogo),
		doctree.Table(
			doctree.Row(doctree.HeaderCell("Milestone"), doctree.HeaderCell("Date")),
			doctree.Row(doctree.Cell("Closing"), doctree.Cell("March 14, 2026")),
			doctree.Row(doctree.Cell("Note").Span(2)),
		),
		doctree.Divider(),
		doctree.Paragraph("See ", doctree.Link("https://example.com/l/1", "the listing")),
		doctree.Paragraph("", doctree.Link("https://example.com/l/1", "")),
	)

	p, err := payload.Build(tree)
	require.NoError(t, err)

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		want := strings.Join([]string{
			"Important Dates",
			"Dear Ann,",
			"Milestone\tDate\nClosing\tMarch 14, 2026\nNote",
			"See the listing",
			"https://example.com/l/1",
		}, "\n\n")
		assert.Equal(t, want, p.PlainText)
	})

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, p.HTML)
		h2 := doc.Find("h2")
		assert.Equal(t, "Important Dates", h2.Text())
		style, _ := h2.Attr("style")
		assert.Equal(t, "font-weight: bold", style)

		img := doc.Find("img")
		require.Equal(t, 1, img.Length())
		assert.Equal(t, "data:image/png;base64,AA", img.AttrOr("src", ""))
		assert.Equal(t, "175", img.AttrOr("width", ""))
		assert.Equal(t, "88", img.AttrOr("height", ""))
		_, hasRole := img.Attr("role")
		assert.False(t, hasRole)
		_, hasTarget := img.Attr("target-width")
		assert.False(t, hasTarget)

		assert.Equal(t, 2, doc.Find("th").Length())
		assert.Equal(t, "2", doc.Find("td").Last().AttrOr("colspan", ""))
		assert.Equal(t, 1, doc.Find("hr").Length())
		assert.Equal(t, "https://example.com/l/1", doc.Find("a").First().AttrOr("href", ""))
		assert.Equal(t, "Ann", doc.Find("p span").First().Text())
	})
}

func TestBuildRejectsInteractiveBlocks(t *testing.T) {
	t.Parallel()

	_, err := payload.Build(doctree.New(doctree.Controls(doctree.Button("Copy", "copy"))))
	assert.ErrorIs(t, err, payload.ErrNotNormalized)

	_, err = payload.Build(nil)
	assert.ErrorIs(t, err, payload.ErrEmptyTree)
}

func TestLabelledLinkKeepsTextInBothFormats(t *testing.T) {
	t.Parallel()

	tree := doctree.New(
		doctree.Paragraph("See ", doctree.Link("https://example.com/l/1", "the listing")),
		doctree.Paragraph("", doctree.Link("https://example.com/l/2", "")),
	)
	normalized, err := transport.New().Normalize(context.Background(), tree)
	require.NoError(t, err)

	p, err := payload.Build(normalized)
	require.NoError(t, err)

	doc := parse(t, p.HTML)
	assert.Equal(t, squash(doc.Text()), squash(p.PlainText))
	assert.Equal(t, "See the listing\n\nhttps://example.com/l/2", p.PlainText)
	assert.Equal(t, "https://example.com/l/1", doc.Find("a").First().AttrOr("href", ""))
}

func TestContentPreservation(t *testing.T) {
	t.Parallel()

	rec, err := deal.New("deal-7", map[deal.Field]any{
		deal.PropertyAddress: "12 Elm St & Annex",
		deal.Side:            deal.Seller,
		deal.SellerName:      "Sam <Seller>",
		deal.SellerEmail:     "sam@example.com",
		deal.OtherAgentName:  "Olive",
		deal.AgentName:       "Alex",
		deal.AgentPhone:      "555-0100",
		deal.BrokerageName:   "Acme Realty",
		deal.ListingURL:      "https://example.com/l/1",
		deal.ContractDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		deal.ClosingDate:     time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		deal.PurchasePrice:   deal.Money(31500000),
		deal.AdImpressions:   5000,
		deal.AdClicks:        50,
	})
	require.NoError(t, err)

	n := transport.New()
	for _, tpl := range templates.Default().Templates() {
		t.Run(tpl.Kind(), func(t *testing.T) {
			t.Parallel()

			doc, err := tpl.Render(rec)
			require.NoError(t, err)
			normalized, err := n.Normalize(context.Background(), doc.Tree)
			require.NoError(t, err)

			p, err := payload.Build(normalized)
			require.NoError(t, err)

			assert.Equal(t, squash(parse(t, p.HTML).Text()), squash(p.PlainText))
			assert.Contains(t, p.PlainText, "12 Elm St & Annex")
			assert.NotContains(t, p.PlainText, "Copy & Email")
		})
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	out := payload.Document(payload.Payload{HTML: "<p>Hi</p>"}, "Offer <draft>")
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Offer &lt;draft&gt;</title>")
	assert.Contains(t, out, "<p>Hi</p>")

	doc := parse(t, out)
	assert.Equal(t, "Hi", doc.Find("body p").Text())
}
