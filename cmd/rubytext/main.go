// Package main is the entry point for the rubytext command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/rubytext/internal/app"
	"github.com/dshills/rubytext/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errExit reports that the command already printed what it had to say.
var errExit = errors.New("exit")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, errExit) || errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	opts.Input = stdin
	opts.Output = stdout
	opts.LogOutput = stderr

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (app.Options, error) {
	var opts app.Options
	var showVersion bool

	fs := flag.NewFlagSet("rubytext", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml, .json)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.Format, "format", "", "Output format (markup, ruby, body, json)")
	fs.StringVar(&opts.Format, "f", "", "Output format (shorthand)")
	fs.Float64Var(&opts.Width, "width", 0, "Wrap lines to this width (0 keeps the configured width)")
	fs.Float64Var(&opts.Width, "w", 0, "Wrap width (shorthand)")
	fs.StringVar(&opts.Font, "font", "", "Font name, or a .ttf/.otf file for the face measurer")
	fs.Float64Var(&opts.FontSize, "font-size", 0, "Font size")
	fs.StringVar(&opts.FontStyle, "font-style", "", "Font style (normal, bold, italic, bold-italic)")
	fs.StringVar(&opts.Measurer, "measurer", "", "Width measurer (cell, face)")
	fs.BoolVar(&opts.Watch, "watch", false, "Re-render when the input or config files change")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "rubytext - ruby-annotated rich text renderer\n\n")
		fmt.Fprintf(stderr, "Usage: rubytext [options] [files...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  echo '{漢字:かんじ}' | rubytext -f body   Print the body text\n")
		fmt.Fprintf(stderr, "  rubytext -w 20 novel.txt                Wrap to 20 cells\n")
		fmt.Fprintf(stderr, "  rubytext -f json -watch novel.txt       Re-export on every save\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if showVersion {
		fmt.Fprintf(stdout, "rubytext %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errExit
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}
	switch opts.Format {
	case "", config.FormatMarkup, config.FormatRuby, config.FormatBody, config.FormatJSON:
	default:
		return opts, fmt.Errorf("invalid format %q (must be markup, ruby, body, or json)", opts.Format)
	}
	if opts.Width < 0 {
		return opts, fmt.Errorf("invalid width %g", opts.Width)
	}

	opts.Files = fs.Args()
	return opts, nil
}
