package templates

import (
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/qrcode"
)

// Raster widths for the listing report.
const (
	PhotoWidth = 320
	QRWidth    = 120
)

// AdResults reports listing advertising performance to the seller. The
// recipient is empty when the record has no seller email.
type AdResults struct{}

func (AdResults) Kind() string  { return "ad-results" }
func (AdResults) Title() string { return "Ad Results Report" }

func (t AdResults) Render(r deal.Record) (doctree.Document, error) {
	if err := requireFields(r, deal.PropertyAddress); err != nil {
		return doctree.Document{}, err
	}

	impressions, hasImpressions := r.Int(deal.AdImpressions)
	clicks, hasClicks := r.Int(deal.AdClicks)
	leads, hasLeads := r.Int(deal.AdLeads)
	spend, hasSpend := r.Money(deal.AdSpend)

	rows := []*doctree.Block{
		doctree.Row(doctree.HeaderCell("Metric"), doctree.HeaderCell("Result").Align("right")),
	}
	if hasImpressions {
		rows = append(rows, labelRow("Impressions", formatCount(impressions)))
	}
	if hasClicks {
		rows = append(rows, labelRow("Clicks", formatCount(clicks)))
	}
	if hasImpressions && hasClicks {
		rows = append(rows, labelRow("Click-through rate", formatPercent(clicks, impressions)))
	}
	if hasLeads {
		rows = append(rows, labelRow("Leads", formatCount(leads)))
	}
	if hasSpend {
		rows = append(rows, labelRow("Ad spend", formatMoney(spend)))
		if hasLeads && leads > 0 {
			rows = append(rows, doctree.Row(
				doctree.Cell("Cost per lead").WithRole(doctree.RoleTotal),
				doctree.Cell(formatMoney(spend/deal.Money(leads))).WithRole(doctree.RoleTotal).Align("right"),
			))
		}
	}
	if dom, ok := r.Int(deal.DaysOnMarket); ok {
		rows = append(rows, labelRow("Days on market", formatCount(dom)))
	}

	var metrics *doctree.Block
	if len(rows) > 1 {
		metrics = doctree.Table(rows...)
	} else {
		metrics = doctree.Paragraph("No advertising results have been reported yet.").WithRole(doctree.RoleNotice)
	}

	var photo *doctree.Block
	if src := text(r, deal.PropertyPhoto); src != "" {
		photo = doctree.Image(src, text(r, deal.PropertyAddress)).WithRole(doctree.RolePhoto).TargetWidth(PhotoWidth)
	}

	var headline *doctree.Block
	if h := text(r, deal.ListingHeadline); h != "" {
		headline = doctree.Paragraph("", doctree.Strong(h))
	}

	tree := doctree.New(
		controls(),
		letterhead(r),
		doctree.Heading(1, t.Title()),
		doctree.Heading(2, text(r, deal.PropertyAddress)),
		headline,
		photo,
		metrics,
		listingBlock(r),
		doctree.Divider(),
		signature(r),
	)

	return doctree.Document{
		Kind:      t.Kind(),
		Title:     t.Title(),
		Subject:   subjectFor("Ad Results", r),
		Recipient: text(r, deal.SellerEmail),
		Tree:      tree,
	}, nil
}

// listingBlock links the public listing and embeds a QR code for it. Links
// that cannot be encoded are shown without a code.
func listingBlock(r deal.Record) *doctree.Block {
	link := text(r, deal.ListingURL)
	if link == "" {
		return nil
	}
	c := doctree.Container(
		doctree.Paragraph("View the listing: ", doctree.Link(link, "")),
	)
	if uri, err := qrcode.Link(link, qrcode.WithSize(256)); err == nil {
		c.Append(doctree.Image(uri, "Listing QR code").TargetWidth(QRWidth))
	}
	return c
}
