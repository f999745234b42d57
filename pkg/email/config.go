package email

// Config configures direct sending. The Postmark tokens may be empty in
// development, where DevSender writes messages to EMAIL_DEV_DIR instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"documents@dealdocs.local"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:".dealdocs/outbox"`
}

// Enabled reports whether Postmark credentials are configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
