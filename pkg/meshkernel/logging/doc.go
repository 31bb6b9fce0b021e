// Package logging provides a minimal logging facade for the MeshKernel
// binding.
//
// The Logger interface is the context-aware subset the session manager needs:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// Arguments are alternating key/value pairs, as with log/slog. slog.Attr
// values are accepted in place of a pair.
//
// # Implementations
//
// The default implementation is backed by go.uber.org/zap:
//
//	logger := logging.NewZap(zap.Must(zap.NewProduction()))
//
//	// Development logger at a named level.
//	logger, err := logging.NewZapLevel("debug")
//
//	// Discard everything (the manager's default).
//	logger := logging.Nop()
//
// Applications already on log/slog can adapt their handler instead:
//
//	logger := logging.New(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
//
// # What gets logged
//
// The session manager logs session creation and destruction at info, every
// engine call at debug (operation, session label, status and duration), and
// translated engine failures at warn. Coordinates are never logged.
package logging
