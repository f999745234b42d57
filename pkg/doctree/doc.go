// Package doctree defines the presentation tree every deal document renders to.
//
// A tree is an ordered hierarchy of *Block values. Each block carries a Kind
// (heading, paragraph, table, image, ...), a set of style-relevant attributes
// such as the logical "role" of the block, an optional text run, and a
// Transportable flag. Blocks that only make sense in the interactive view
// (action buttons, inputs, navigation) are created with Transportable set to
// false and are removed before a document leaves the application.
//
// # Usage
//
//	tree := doctree.New(
//	    doctree.Heading(1, "Estimated Settlement Statement"),
//	    doctree.Paragraph("123 Main St, Springfield"),
//	    doctree.Table(
//	        doctree.Row(doctree.HeaderCell("Item"), doctree.HeaderCell("Amount")),
//	        doctree.Row(doctree.Cell("Purchase price"), doctree.Cell("$450,000.00").Align("right")),
//	    ),
//	    doctree.Button("Copy & Email", "copy-email"),
//	)
//
// Trees are built fresh per render and are never shared between renders.
// Transformations that prepare a tree for another medium operate on a deep
// copy obtained with Clone, so the on-screen tree is never mutated.
package doctree
