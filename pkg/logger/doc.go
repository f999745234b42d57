// Package logger builds the structured slog.Logger shared by every dealdocs
// component and provides attribute helpers that keep key names consistent
// across packages.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "dealdocs"),
//	    logger.WithContextValue("device_id", deviceKey{}),
//	)
//	log.InfoContext(ctx, "document copied", logger.DealID(id), logger.DocumentKind(kind))
package logger
