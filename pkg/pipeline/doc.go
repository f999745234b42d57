// Package pipeline runs a deal document from record to mail client.
//
// Copy & Email renders the document, normalizes a clone of the tree for
// transport, builds the HTML and plain text payload, commits it to the
// clipboard and only then opens the preferred mail client. The steps run
// strictly in that order; a clipboard failure stops the run before any
// handoff. Every invocation ends in exactly one Result with a user-facing
// notice and is recorded as an activity event.
package pipeline
