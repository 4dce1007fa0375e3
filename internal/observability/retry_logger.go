package observability

import (
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type retryLogger struct {
	sugar *zap.SugaredLogger
}

// NewRetryLogger adapts zap to the retryablehttp logging interface.
func NewRetryLogger(logger *zap.Logger) retryablehttp.LeveledLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return retryLogger{sugar: logger.Named("http-client").Sugar()}
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
