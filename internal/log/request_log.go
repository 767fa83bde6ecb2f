package log

import (
	"time"

	"github.com/project/librarydesk/pkg/logger"
	"go.uber.org/zap"
)

func InfoRequest(l *zap.Logger, method, path string, status int, duration time.Duration, requestID, traceID string) {
	logger.MakeInfo(l, "request served",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
		zap.String("request_id", requestID),
		zap.String("trace_id", traceID))
}

func ErrorPanic(l *zap.Logger, recovered any, requestID string, stack []byte) {
	if l == nil {
		return
	}
	l.Error("panic recovered",
		zap.Any("panic", recovered),
		zap.String("request_id", requestID),
		zap.ByteString("stack", stack))
}
