package digest

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes summaries to the log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new log sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Flush(_ context.Context, summary Summary) error {
	s.logger.Info("album activity",
		zap.String("session", summary.Session),
		zap.Int("saved", summary.Count),
		zap.Int64("bytes", summary.Bytes),
		zap.Any("formats", summary.Formats),
		zap.Time("first", summary.First),
		zap.Time("last", summary.Last),
	)

	return nil
}
