package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Bus.DeliveryTimeout.Std() != 5*time.Second {
		t.Errorf("DeliveryTimeout = %v", cfg.Bus.DeliveryTimeout.Std())
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[log]
level = "debug"

[bus]
delivery_timeout = "250ms"
endpoint_capacity = 8
`)
	cfg, err := Parse("test.toml", data)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	want := Config{
		Log: LogConfig{Level: "debug"},
		Bus: BusConfig{DeliveryTimeout: Duration(250 * time.Millisecond), EndpointCapacity: 8},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse("partial.toml", []byte("[bus]\nendpoint_capacity = 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.Bus.DeliveryTimeout != Default().Bus.DeliveryTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Bus.DeliveryTimeout.Std())
	}
	if cfg.Bus.EndpointCapacity != 3 {
		t.Errorf("EndpointCapacity = %d", cfg.Bus.EndpointCapacity)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"bad syntax", "[log\nlevel = 1", nil},
		{"bad duration", "[bus]\ndelivery_timeout = \"soon\"", nil},
		{"bad level", "[log]\nlevel = \"loud\"", ErrInvalidValue},
		{"negative capacity", "[bus]\nendpoint_capacity = -1", ErrInvalidValue},
		{"negative timeout", "[bus]\ndelivery_timeout = \"-1s\"", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), "bad.toml") {
				t.Errorf("error should name the source: %v", err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("pos.toml", []byte("[log]\nlevel = = 1\n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"

	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse("encoded", data)
	if err != nil {
		t.Fatalf("re-parse failed: %v\n%s", err, data)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textcore.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Config, 4)
	w, err := Watch(path, func(cfg Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "error" {
			t.Errorf("reloaded level = %q", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	w, err := Watch(path, func(Config, error) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
}
