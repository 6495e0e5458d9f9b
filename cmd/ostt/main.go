package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/inject"
	"github.com/chaz8081/ostt/internal/logging"
)

const usageText = `Usage: ostt [flags] [command] [args]

Commands:
  record              record from the microphone and transcribe (default)
  transcribe <file>   transcribe an existing audio file
  auth [model]        choose a model and store its API key
  config              print the config path, creating defaults if absent
  list-devices        list audio capture devices
  history [-n N]      show recent transcriptions

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the streams and settings shared by every command.
type app struct {
	log    *zap.Logger
	output string
	stdin  io.Reader
	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ostt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "console", "log format: console or json")
	output := fs.String("output", inject.MethodStdout, "where to send the transcript: stdout, clipboard, type, paste")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	log, err := logging.New(*logLevel, *logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	undo := zap.ReplaceGlobals(log)
	defer undo()

	a := &app{
		log:    log,
		output: *output,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := "record", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	log.Debug("running command", zap.String("command", cmd), zap.Strings("args", rest))

	switch cmd {
	case "record":
		return a.record(ctx)
	case "transcribe":
		if len(rest) != 1 {
			return errors.New("usage: ostt transcribe <file>")
		}
		return a.transcribeFile(ctx, rest[0])
	case "auth":
		if len(rest) > 1 {
			return errors.New("usage: ostt auth [model]")
		}
		model := ""
		if len(rest) == 1 {
			model = rest[0]
		}
		return a.auth(model)
	case "config":
		return a.config()
	case "list-devices":
		return a.listDevices()
	case "history":
		return a.history(ctx, rest)
	case "help":
		fs.Usage()
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}
