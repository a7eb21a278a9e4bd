package logger

import (
	"context"
	"testing"
)

func TestLogBeforeInitDoesNotPanic(t *testing.T) {
	saved := globalLogger
	globalLogger = nil
	defer func() { globalLogger = saved }()

	ctx := context.Background()
	Info(ctx, "message before init", "key", "value")
	Warn(ctx, "warning before init")
	Resolution(ctx, "handelsbanken", "SHB A", "Svenska Handelsbanken A", "alias")
	Verdict(ctx, "SHB A", "BUY", true)
}

func TestInitWithConfigSetsLevel(t *testing.T) {
	if err := InitWithConfig(LogConfig{Level: "DEBUG", Format: "text", TracingEnabled: false}); err != nil {
		t.Fatal(err)
	}
	if globalLogger == nil {
		t.Fatal("expected global logger to be set")
	}
	if logLevel.String() != "DEBUG" {
		t.Errorf("level = %s, want DEBUG", logLevel)
	}
}

func TestParseLogLevelDefaultsToInfo(t *testing.T) {
	if got := parseLogLevel("nonsense"); got.String() != "INFO" {
		t.Errorf("parseLogLevel fallback = %s, want INFO", got)
	}
}
