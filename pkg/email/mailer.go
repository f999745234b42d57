package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// EmailSender delivers a rendered document.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams is one outgoing message. BodyHTML is a complete HTML
// document; BodyText is its plain text alternative.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	ReplyTo  string `json:"reply_to,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidAddress reports whether s looks like a deliverable address.
func ValidAddress(s string) bool {
	return emailRegex.MatchString(s)
}

// Validate checks the params before any provider call.
func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.SendTo) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	case !ValidAddress(p.SendTo):
		return fmt.Errorf("%w: recipient must be a valid email address", ErrInvalidParams)
	case p.ReplyTo != "" && !ValidAddress(p.ReplyTo):
		return fmt.Errorf("%w: reply-to must be a valid email address", ErrInvalidParams)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyHTML) == "":
		return fmt.Errorf("%w: html body is required", ErrInvalidParams)
	}
	return nil
}
