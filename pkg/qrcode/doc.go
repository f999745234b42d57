// Package qrcode renders QR codes as PNG images or data URIs that can be
// embedded in documents and emails without external hosting.
package qrcode
