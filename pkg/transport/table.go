package transport

import "github.com/dmitrymomot/dealdocs/pkg/doctree"

const (
	fontStack = "Arial, Helvetica, sans-serif"
	textColor = "#222222"
	mutedText = "#666666"
	linkColor = "#2b6cb0"
	ruleColor = "#dddddd"
)

// FallbackStyle is applied to blocks of unmapped kinds when the normalizer
// runs in lenient mode.
var FallbackStyle = Style{
	{"font-family", fontStack},
	{"font-size", "14px"},
	{"line-height", "20px"},
	{"color", textColor},
}

var alignments = map[string]Style{
	"left":   {{"text-align", "left"}},
	"center": {{"text-align", "center"}},
	"right":  {{"text-align", "right"}},
}

var defaultTable = MustNewTable(
	Rule{
		Kind:   doctree.KindContainer,
		Base:   Style{{"margin", "0"}, {"padding", "0"}},
		ByRole: map[doctree.Role]Style{doctree.RoleSignature: {{"margin", "24px 0 0 0"}}},
		ByAttr: map[string]map[string]Style{doctree.AttrAlign: alignments},
	},
	Rule{
		Kind: doctree.KindHeading,
		Base: Style{
			{"font-family", fontStack},
			{"font-weight", "bold"},
			{"color", "#1a1a1a"},
			{"margin", "0 0 12px 0"},
			{"font-size", "22px"},
			{"line-height", "28px"},
		},
		ByAttr: map[string]map[string]Style{
			doctree.AttrLevel: {
				"1": {{"font-size", "22px"}, {"line-height", "28px"}},
				"2": {{"font-size", "18px"}, {"line-height", "24px"}},
				"3": {{"font-size", "16px"}, {"line-height", "22px"}},
			},
			doctree.AttrAlign: alignments,
		},
	},
	Rule{
		Kind: doctree.KindParagraph,
		Base: Style{
			{"font-family", fontStack},
			{"font-size", "14px"},
			{"line-height", "20px"},
			{"color", textColor},
			{"margin", "0 0 12px 0"},
		},
		ByRole: map[doctree.Role]Style{
			doctree.RoleSecondaryText: {{"color", mutedText}},
			doctree.RoleNotice: {
				{"background-color", "#f5f7fa"},
				{"border-left", "3px solid " + linkColor},
				{"padding", "8px 12px"},
			},
		},
		ByAttr: map[string]map[string]Style{doctree.AttrAlign: alignments},
	},
	Rule{
		Kind: doctree.KindText,
		ByRole: map[doctree.Role]Style{
			doctree.RoleEmphasis:      {{"font-weight", "bold"}},
			doctree.RoleSecondaryText: {{"color", mutedText}},
			doctree.RoleLabel:         {{"color", "#444444"}},
		},
	},
	Rule{
		Kind: doctree.KindLink,
		Base: Style{{"color", linkColor}, {"text-decoration", "underline"}},
	},
	Rule{
		Kind: doctree.KindTable,
		Base: Style{
			{"border-collapse", "collapse"},
			{"width", "100%"},
			{"margin", "0 0 16px 0"},
			{"font-family", fontStack},
			{"font-size", "14px"},
		},
	},
	Rule{
		Kind: doctree.KindRow,
		Base: Style{{"vertical-align", "top"}},
	},
	Rule{
		Kind: doctree.KindCell,
		Base: Style{
			{"padding", "6px 8px"},
			{"border", "1px solid " + ruleColor},
			{"text-align", "left"},
			{"color", textColor},
		},
		ByRole: map[doctree.Role]Style{
			doctree.RoleLabel: {{"color", "#444444"}},
			doctree.RoleTotal: {{"font-weight", "bold"}, {"border-top", "2px solid " + textColor}},
		},
		ByAttr: map[string]map[string]Style{
			doctree.AttrAlign:  alignments,
			doctree.AttrHeader: {"true": {{"font-weight", "bold"}, {"background-color", "#f2f2f2"}}},
		},
	},
	Rule{
		Kind: doctree.KindImage,
		Base: Style{
			{"display", "block"},
			{"border", "0"},
			{"outline", "none"},
			{"max-width", "100%"},
			{"height", "auto"},
		},
		ByRole: map[doctree.Role]Style{
			doctree.RoleLogo:      {{"margin", "0 0 12px 0"}},
			doctree.RolePhoto:     {{"margin", "0 0 16px 0"}},
			doctree.RoleSignature: {{"margin", "0 0 4px 0"}},
		},
	},
	Rule{
		Kind: doctree.KindDivider,
		Base: Style{{"border", "0"}, {"border-top", "1px solid " + ruleColor}, {"margin", "16px 0"}},
	},
	Rule{
		Kind: doctree.KindButton,
		Base: Style{
			{"display", "inline-block"},
			{"padding", "10px 16px"},
			{"background-color", linkColor},
			{"color", "#ffffff"},
			{"border-radius", "4px"},
			{"text-decoration", "none"},
			{"font-family", fontStack},
			{"font-weight", "bold"},
		},
		ByRole: map[doctree.Role]Style{
			doctree.RoleSecondaryAction: {{"background-color", "#e2e8f0"}, {"color", "#1a1a1a"}},
		},
	},
	Rule{
		Kind: doctree.KindInput,
		Base: Style{
			{"border", "1px solid #cccccc"},
			{"padding", "6px 8px"},
			{"font-family", fontStack},
			{"font-size", "14px"},
		},
	},
)

// DefaultTable returns the style table covering every kind doctree builds.
func DefaultTable() *Table {
	return defaultTable
}
