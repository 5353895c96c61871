package logging

import (
	"testing"

	"github.com/rs/zerolog"

	"binai-trading-bot/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"DEBUG":   zerolog.DebugLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"WARN":    zerolog.WarnLevel,
		"WARNING": zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
		"FATAL":   zerolog.FatalLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNewAppliesConfiguredLevel(t *testing.T) {
	logger := New(&config.LoggingConfig{Level: "ERROR", Output: "stdout", JSONFormat: true})

	if logger.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("logger level = %s, want error", logger.GetLevel())
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	logger := New(&config.LoggingConfig{})

	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("logger level = %s, want info", logger.GetLevel())
	}
}
