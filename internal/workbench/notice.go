package workbench

import (
	"context"
	"log/slog"

	"aromasheet/internal/logging"
)

// NoticeLevel grades an advisory notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier receives notices as they are raised.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

type logNotifier struct {
	logger *slog.Logger
}

// LogNotifier writes notices to logger, warnings at warn level and the rest
// at info.
func LogNotifier(logger *slog.Logger) Notifier {
	return logNotifier{logger: logging.NewComponentLogger(logger, "notice")}
}

func (l logNotifier) Notify(ctx context.Context, n Notice) {
	logger := logging.WithContext(ctx, l.logger)
	attrs := logging.Args(logging.String("level", string(n.Level)))
	if n.Level == NoticeWarning {
		logger.Warn(n.Message, attrs...)
		return
	}
	logger.Info(n.Message, attrs...)
}
