// Package app wires configuration, logging and the text core together for
// the textcore command.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/document"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/event"
	"github.com/dshills/textcore/internal/logging"
)

// ErrQuit signals that the session should end normally.
var ErrQuit = errors.New("quit requested")

// InitError wraps a failure while starting a component.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML settings file. Empty uses defaults.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// WatchConfig reloads ConfigPath when it changes.
	WatchConfig bool

	// Stdout receives command output. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// Application holds the shared state of one textcore run.
type Application struct {
	mu  sync.RWMutex
	cfg config.Config

	opts    Options
	logger  *logging.Logger
	watcher *config.Watcher
}

// New loads configuration and prepares the logger.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	// Event printers and commands write to Stdout from different goroutines.
	opts.Stdout = &syncWriter{w: opts.Stdout}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
		cfg = loaded
	}

	app := &Application{
		cfg:  cfg,
		opts: opts,
		logger: logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.Log.Level),
			Output: opts.Stderr,
			Prefix: "textcore",
		}),
	}
	if opts.LogLevel != "" {
		app.logger.SetLevel(logging.ParseLevel(opts.LogLevel))
	}

	if opts.WatchConfig && opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, app.applyConfig,
			config.WithWatchLogger(app.logger.WithComponent("config")))
		if err != nil {
			return nil, &InitError{Component: "config watcher", Err: err}
		}
		app.watcher = w
	}

	return app, nil
}

// applyConfig takes effect for buffers created after the reload; the log
// level changes immediately. A flag-given level keeps precedence.
func (app *Application) applyConfig(cfg config.Config, err error) {
	if err != nil {
		return
	}
	app.mu.Lock()
	app.cfg = cfg
	app.mu.Unlock()

	if app.opts.LogLevel == "" {
		app.logger.SetLevel(logging.ParseLevel(cfg.Log.Level))
	}
}

// Config returns the settings currently in effect.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// NewBuffer creates a buffer configured from the current settings.
func (app *Application) NewBuffer(text string) *buffer.TextBuffer {
	cfg := app.Config()
	return buffer.NewFromString(text,
		buffer.WithLogger(app.logger),
		buffer.WithBusOptions(event.WithDeliveryTimeout(cfg.Bus.DeliveryTimeout.Std())),
	)
}

// OpenDocument creates a clean document for path holding text.
func (app *Application) OpenDocument(path, text string) *document.Document {
	return document.New(app.NewBuffer(text), document.WithPath(path))
}

// Close stops the config watcher, if any.
func (app *Application) Close() error {
	if app.watcher != nil {
		return app.watcher.Close()
	}
	return nil
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
