// Package templates renders deal records into presentation trees.
//
// Every document type implements Template. Templates are stateless: Render
// builds a fresh tree per call, decides which blocks are interactive only,
// and picks the subject line and the recipient field. Everything downstream
// of Render is shared by all document types.
package templates
