package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"serialterm/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("baud rate = %d, want 115200", cfg.Serial.BaudRate)
	}
	if cfg.Serial.DataBits != 8 {
		t.Errorf("data bits = %d, want 8", cfg.Serial.DataBits)
	}
	if cfg.Serial.Parity != "none" || cfg.Serial.StopBits != "1" {
		t.Errorf("framing = %s/%s, want none/1", cfg.Serial.Parity, cfg.Serial.StopBits)
	}
	if cfg.Serial.ReadTimeout != 100*time.Millisecond {
		t.Errorf("read timeout = %v, want 100ms", cfg.Serial.ReadTimeout)
	}
	if cfg.Send.LineEnding != "none" {
		t.Errorf("line ending = %q, want none", cfg.Send.LineEnding)
	}
	if cfg.Send.RepeatInterval != time.Second {
		t.Errorf("repeat interval = %v, want 1s", cfg.Send.RepeatInterval)
	}
	if cfg.Display.Format != "ascii" {
		t.Errorf("display format = %q, want ascii", cfg.Display.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "serialterm.yaml")
	content := `
serial:
  port: /dev/ttyACM1
  baud_rate: 9600
  parity: even
send:
  line_ending: nlcr
display:
  format: both
  timestamps: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	params := cfg.Parameters()
	want := model.ConnectionParameters{
		Port:        "/dev/ttyACM1",
		BaudRate:    9600,
		DataBits:    8,
		Parity:      model.ParityEven,
		StopBits:    model.StopBitsOne,
		FlowControl: model.FlowControlNone,
	}
	if params != want {
		t.Errorf("Parameters() = %+v, want %+v", params, want)
	}
	if string(cfg.LineEnding().Suffix()) != "\r\n" {
		t.Errorf("line ending suffix = %q, want CRLF", cfg.LineEnding().Suffix())
	}
	if cfg.DisplayFormat() != model.FormatBoth || !cfg.Display.Timestamps {
		t.Errorf("display = %+v", cfg.Display)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad parity", "serial:\n  parity: sometimes\n"},
		{"bad line ending", "send:\n  line_ending: crlfcr\n"},
		{"bad display format", "display:\n  format: octal\n"},
		{"bad send format", "send:\n  format: both\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"zero repeat interval", "send:\n  repeat_interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "serialterm.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted invalid config")
			}
		})
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted a missing explicit config file")
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SERIALTERM_SERIAL_BAUD_RATE", "57600")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.BaudRate != 57600 {
		t.Errorf("baud rate = %d, want 57600 from environment", cfg.Serial.BaudRate)
	}
}
