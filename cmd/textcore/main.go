// Package main is the entry point for the textcore tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/textcore/internal/app"
	"github.com/dshills/textcore/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	app.Options
	command string
	args    []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch opts.command {
	case "replay":
		err = withArg(opts, func(path string) error { return application.Replay(ctx, path) })
	case "lua":
		err = withArg(opts, func(path string) error { return application.RunLua(ctx, path) })
	case "stat":
		err = withArg(opts, application.PrintStat)
	case "repl":
		err = application.REPL(ctx, os.Stdin)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", opts.command)
		flag.Usage()
		return 2
	}

	if err != nil && !errors.Is(err, app.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func withArg(opts options, fn func(string) error) error {
	if len(opts.args) != 1 {
		return fmt.Errorf("%s takes exactly one file argument", opts.command)
	}
	return fn(opts.args[0])
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flag.BoolVar(&opts.WatchConfig, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "textcore - concurrent rope text buffer tools\n\n")
		fmt.Fprintf(os.Stderr, "Usage: textcore [options] <command> [file]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  replay FILE.yaml   Apply a recorded edit script\n")
		fmt.Fprintf(os.Stderr, "  lua FILE.lua       Run a Lua edit script against an empty buffer\n")
		fmt.Fprintf(os.Stderr, "  stat FILE          Report size, lines and graphemes of a file\n")
		fmt.Fprintf(os.Stderr, "  repl               Edit a buffer interactively from stdin\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("textcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	opts.command = flag.Arg(0)
	opts.args = flag.Args()[1:]

	return opts
}
