package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapNotifier(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	notifier := NewZapNotifier(zap.New(core))

	notifier.Omg("Supplementary billing flag processed", map[string]any{"trigger": "charge_version"})
	notifier.Omfg("Supplementary Billing Flag failed", map[string]string{"chargeVersionId": "abc"}, errors.New("not found"))

	entries := recorded.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "notifier", entries[0].LoggerName)

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "Supplementary Billing Flag failed", entries[1].Message)
	assert.Equal(t, "not found", entries[1].ContextMap()["error"])
}
