package log

import (
	"context"
	"testing"
)

func TestSetDefaultLogger(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	customLogger := New(DebugConfig())
	SetDefaultLogger(customLogger)

	if DefaultLogger() != customLogger {
		t.Error("DefaultLogger did not return the custom logger")
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	defaultLogger = nil

	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("DefaultLogger returned nil when no default was set")
	}
	if DefaultLogger() != logger {
		t.Error("DefaultLogger did not return the same logger on second call")
	}
	if logger.Enabled(context.Background(), LevelInfo) || !logger.Enabled(context.Background(), LevelWarn) {
		t.Error("lazy default logger should log at WARN")
	}
}

func TestOrDefault(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	def := Default()
	SetDefaultLogger(def)

	if OrDefault(nil) != def {
		t.Error("OrDefault(nil) should return the process default")
	}
	own := Default()
	if OrDefault(own) != own {
		t.Error("OrDefault should keep a non-nil logger")
	}
}
