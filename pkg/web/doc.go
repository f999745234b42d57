// Package web is the HTTP surface of dealdocs.
//
// Every browser is a device identified by a signed cookie. A device owns a
// clipboard entry and a mail client preference; sharing a document writes
// that clipboard and returns the composed deep link for the browser to
// open. Requests made by datastar get their answers as element patches,
// everything else gets JSON.
//
//	GET  /healthz
//	GET  /mail-clients
//	GET  /preferences/mail-client
//	PUT  /preferences/mail-client
//	GET  /deals/{dealID}/documents
//	GET  /deals/{dealID}/documents/{kind}
//	POST /deals/{dealID}/documents/{kind}/share
//	GET  /clipboard
//
// Shares can be throttled per device with WithShareLimit.
package web
