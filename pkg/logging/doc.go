// Package logging wraps log/slog with the subsystem-tagged helpers used
// throughout the testafy CLI.
//
// Init installs a text or JSON handler at a minimum level and makes it the
// slog default. Messages carry a "subsystem" attribute naming the component
// that emitted them:
//
//	logging.Init(logging.Options{Level: logging.LevelDebug, Format: logging.FormatJSON})
//	logging.Info("Suite", "Loaded %d scenarios from %s", n, dir)
//	logging.Error("Watch", err, "Failed to re-run %s", path)
//
// Components that take a *slog.Logger, such as the API client, receive one
// from Logger:
//
//	client := testafy.NewClient(cfg, testafy.WithLogger(logging.Logger("Client")))
//
// Log output goes to stderr by default so that command results written to
// stdout can be piped.
package logging
