package container

import "go.uber.org/zap"

// Logger is the minimal structured-logging surface the Engine and
// Container depend on, backed by zap.SugaredLogger in production and
// trivially faked in tests. Grounded on the teacher's libs/core/logger.go
// zap wrapper.
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
}

// zapLogger adapts *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger builds a production zap-backed Logger. Callers embedding the
// container in a CLI or service should instead construct their own
// *zap.Logger and pass it to NewLoggerFrom, so log output shares one
// sink and encoder configuration with the rest of the process.
func NewLogger() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

// NewLoggerFrom adapts an existing *zap.Logger.
func NewLoggerFrom(z *zap.Logger) Logger {
	return &zapLogger{sugar: z.Sugar()}
}

func (l *zapLogger) Debugw(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// noopLogger discards everything; used as the Container's default so
// NewContainer never requires a logger argument.
type noopLogger struct{}

func (noopLogger) Debugw(string, ...any) {}
func (noopLogger) Infow(string, ...any)  {}
func (noopLogger) Warnw(string, ...any)  {}
func (noopLogger) Errorw(string, ...any) {}
