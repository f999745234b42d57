// Package payload serializes a normalized presentation tree into the two
// representations of one email body: HTML with inline styles and a plain
// text fallback. Both come out of the same walk so their content cannot
// diverge.
package payload
