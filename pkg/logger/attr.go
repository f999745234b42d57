package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". Nil errors produce an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// DealID records the deal record identifier.
func DealID(id string) slog.Attr {
	return slog.String("deal_id", id)
}

// DocumentKind records the document template kind.
func DocumentKind(kind string) slog.Attr {
	return slog.String("document_kind", kind)
}

// BlockKind records a presentation block kind.
func BlockKind(kind string) slog.Attr {
	return slog.String("block_kind", kind)
}

// MailClient records a mail client descriptor id.
func MailClient(id string) slog.Attr {
	return slog.String("mail_client", id)
}

// ImageSource records an image source. Data URIs are truncated so payloads
// never end up in logs.
func ImageSource(uri string) slog.Attr {
	const max = 96
	if len(uri) > max {
		uri = uri[:max] + "..."
	}
	return slog.String("image_source", uri)
}

// Duration records elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Status records an outcome status.
func Status(s string) slog.Attr {
	return slog.String("status", s)
}
