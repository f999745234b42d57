package main

// Config is the process configuration. Integration settings live in their
// own packages and are loaded only when the integration is used.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	// DealStore is one of dir, mongo or postgres.
	DealStore string `env:"DEALDOCS_DEAL_STORE" envDefault:"dir"`
	DealDir   string `env:"DEALDOCS_DEAL_DIR" envDefault:".dealdocs/deals"`

	// Clipboard is one of dir, memory or redis. The CLI uses it directly;
	// the server keeps one clipboard per browser.
	Clipboard    string `env:"DEALDOCS_CLIPBOARD" envDefault:"dir"`
	ClipboardDir string `env:"DEALDOCS_CLIPBOARD_DIR" envDefault:".dealdocs/clipboard"`
	DeviceID     string `env:"DEALDOCS_DEVICE_ID" envDefault:"local"`

	MailClientsFile string `env:"DEALDOCS_MAIL_CLIENTS_FILE"`
	PreferencesFile string `env:"DEALDOCS_PREFERENCES_FILE"`
}
