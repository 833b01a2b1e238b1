package logger

import (
	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ZapNotifier reports application events through zap
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier creates a new ZapNotifier
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger.Named("notifier")}
}

// Omg logs an informational event
func (n *ZapNotifier) Omg(message string, data map[string]any) {
	n.logger.Info(message, zap.Any("data", data))
}

// Omfg logs a failure with the data that caused it
func (n *ZapNotifier) Omfg(message string, data any, err error) {
	n.logger.Error(message, zap.Any("data", data), zap.Error(err))
}

var _ shared.Notifier = (*ZapNotifier)(nil)
