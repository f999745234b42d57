// Package httpserver runs the dealdocs HTTP surface with graceful shutdown
// and provides the health endpoint.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
package httpserver
