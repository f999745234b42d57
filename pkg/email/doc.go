// Package email sends a rendered deal document directly, bypassing the
// clipboard handoff.
//
// EmailSender has two implementations: a Postmark client for production and
// DevSender, which writes each message to disk as HTML, plain text and JSON
// metadata for inspection during development. Both validate the params
// before doing any work; failures wrap ErrFailedToSendEmail, bad input
// wraps ErrInvalidParams and bad configuration wraps ErrInvalidConfig.
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "buyer@example.com",
//	    Subject:  "Settlement Statement - 12 Elm St",
//	    BodyHTML: doc,
//	    BodyText: text,
//	    Tag:      "settlement-statement",
//	})
package email
