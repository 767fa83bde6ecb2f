package log

import (
	"github.com/project/librarydesk/pkg/logger"
	"go.uber.org/zap"
)

func InfoRecord(l *zap.Logger, msg string, traceID string, action Action, kind string, id ...int64) {
	if len(id) == 0 {
		logger.MakeInfo(l, msg,
			zap.String("trace_id", traceID),
			zap.String("kind", kind),
			zap.String("action", action))
		return
	}
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("kind", kind),
		zap.Int64("id", id[0]),
		zap.String("action", action))
}

func ErrorRecord(l *zap.Logger, err error, msg string, traceID string, action Action, kind string, id ...int64) bool {
	if len(id) == 0 {
		return logger.CheckError(err, l, msg,
			zap.String("trace_id", traceID),
			zap.String("kind", kind),
			zap.Error(err),
			zap.String("action", action))
	}
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.String("kind", kind),
		zap.Int64("id", id[0]),
		zap.Error(err),
		zap.String("action", action))
}

func InfoList(l *zap.Logger, msg string, traceID string, action Action, kind string, page, limit, total int) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("kind", kind),
		zap.Int("page", page),
		zap.Int("limit", limit),
		zap.Int("total", total),
		zap.String("action", action))
}
