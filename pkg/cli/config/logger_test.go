package config_test

import (
	"testing"

	"github.com/skillsync/skillsync/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "Valid level: debug", level: "debug"},
		{name: "Valid level: DEBUG (case insensitive)", level: "DEBUG"},
		{name: "Valid level: info", level: "info"},
		{name: "Valid level: warn", level: "warn"},
		{name: "Valid level: WARN", level: "WARN"},
		{name: "Valid level: error", level: "error"},
		{name: "Invalid level: invalid", level: "invalid", wantErr: true},
		{name: "Invalid level: empty string", level: "", wantErr: true},
		{name: "Invalid level: random", level: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level: tt.level,
				JSON:  false,
			}

			result, err := logger.Configure()
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == nil {
				t.Error("Configure() returned nil logger for valid input")
			}
		})
	}
}

func TestLogger_Configure_JSONFormat(t *testing.T) {
	for _, jsonMode := range []bool{true, false} {
		logger := &config.Logger{
			Level: "info",
			JSON:  jsonMode,
		}

		result, err := logger.Configure()
		if err != nil {
			t.Errorf("Configure() unexpected error = %v", err)
			continue
		}
		if result == nil {
			t.Error("Configure() returned nil logger")
			continue
		}

		result.Info("test log message")
	}
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	if len(flags) != 2 {
		t.Errorf("Flags() returned %d flags, want 2", len(flags))
	}

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		if f, ok := flag.(interface{ Names() []string }); ok {
			if names := f.Names(); len(names) > 0 {
				flagNames[names[0]] = true
			}
		}
	}

	if !flagNames["log-level"] {
		t.Error("Missing log-level flag")
	}
	if !flagNames["log-json"] {
		t.Error("Missing log-json flag")
	}
}
