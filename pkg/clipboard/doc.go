// Package clipboard commits an email payload as one multi-format entry.
//
// A Write stores the HTML and plain text representations together; a paste
// target reads whichever format it supports. Writers never leave a
// half-written entry behind: either both formats are replaced or the
// previous entry stays.
package clipboard
