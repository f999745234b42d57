// Package redis connects to the Redis server that backs the clipboard
// relay and per-device mail client preferences.
//
// Connect retries the initial ping according to Config; Healthcheck returns
// a probe for the HTTP health endpoint. Both wrap go-redis errors with the
// sentinels in this package.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	relay := clipboard.NewRelay(client, clipboard.WithTTL(cfg.ClipboardTTL))
package redis
