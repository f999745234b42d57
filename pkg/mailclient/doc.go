// Package mailclient hands the user off to an external mail application.
//
// A Registry lists the supported clients and their deep link templates. It
// is static configuration loaded from YAML; the built-in set covers the
// system mailto handler, Gmail, Outlook and Yahoo Mail. The selected client
// lives in a PreferenceStore (memory, a JSON file or Redis) and is read on
// every dispatch, so a change made through Preferences.Set is visible to the
// very next call.
//
// Dispatch never fails because of a stale preference: unknown ids fall back
// to the "default" client. An Opener that cannot start the handoff yields
// ErrOpenBlocked together with the composed URL, which the caller can show
// for manual navigation.
//
//	d := mailclient.NewDispatcher(mailclient.NewFileStore(path))
//	url, err := d.Dispatch(ctx, "buyer@example.com", "Settlement Statement")
package mailclient
