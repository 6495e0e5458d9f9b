package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/chaz8081/ostt/internal/audio"
	"github.com/chaz8081/ostt/internal/auth"
	"github.com/chaz8081/ostt/internal/config"
	"github.com/chaz8081/ostt/internal/history"
	"github.com/chaz8081/ostt/internal/transcribe"
)

// loadConfig loads the config file with a setup hint when it is missing.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err == nil {
		return cfg, nil
	}
	var cerr *config.Error
	if errors.As(err, &cerr) && cerr.Kind == config.KindIO && errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w\n\nRun 'ostt config' to create a default configuration", err)
	}
	return nil, err
}

// newRequest builds a transcription request from the user's config,
// credentials and keywords.
func newRequest(cfg *config.Config, creds *auth.Credentials, keywords []string) (*transcribe.Request, error) {
	model := transcribe.DefaultModel
	if creds.Model != "" {
		m, err := transcribe.ParseModel(creds.Model)
		if err != nil {
			return nil, fmt.Errorf("%w\n\nRun 'ostt auth' to choose a model", err)
		}
		model = m
	}

	req := &transcribe.Request{
		Model:     model,
		Keywords:  keywords,
		Providers: cfg.Providers,
	}

	provider := model.Provider()
	if provider == transcribe.ProviderParakeet {
		return req, nil
	}

	key, ok := creds.Key(string(provider))
	if !ok {
		return nil, fmt.Errorf("no %s API key configured\n\nRun 'ostt auth %s' to add one", provider.DisplayName(), model)
	}
	req.APIKey = key
	return req, nil
}

// prepare loads everything a transcription needs.
func (a *app) prepare() (*config.Config, *transcribe.Request, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	creds, err := auth.Load()
	if err != nil {
		return nil, nil, err
	}
	keywords, err := config.LoadKeywords()
	if err != nil {
		return nil, nil, err
	}
	req, err := newRequest(cfg, creds, keywords)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info("transcription settings",
		zap.String("model", string(req.Model)),
		zap.Int("keywords", len(keywords)))
	return cfg, req, nil
}

func (a *app) auth(modelName string) error {
	creds, err := auth.Load()
	if err != nil {
		return err
	}

	if modelName == "" {
		modelName, err = a.promptModel(creds.Model)
		if err != nil {
			return err
		}
	}
	model, err := transcribe.ParseModel(modelName)
	if err != nil {
		return err
	}

	provider := model.Provider()
	if provider != transcribe.ProviderParakeet {
		_, had := creds.Key(string(provider))
		prompt := fmt.Sprintf("%s API key: ", provider.DisplayName())
		if had {
			prompt = fmt.Sprintf("%s API key (leave empty to keep the current key): ", provider.DisplayName())
		}
		key, err := a.readSecret(prompt)
		if err != nil {
			return err
		}
		switch {
		case key != "":
			creds.SetKey(string(provider), key)
		case !had:
			return fmt.Errorf("no API key entered for %s", provider.DisplayName())
		}
	}

	creds.Model = string(model)
	if err := auth.Save(creds); err != nil {
		return err
	}

	path, _ := auth.Path()
	fmt.Fprintf(a.stderr, "Saved %s as the active model in %s\n", model, path)
	return nil
}

// promptModel lists the models and reads a choice by number or name.
// An empty answer keeps current, or the default model.
func (a *app) promptModel(current string) (string, error) {
	if current == "" {
		current = string(transcribe.DefaultModel)
	}

	fmt.Fprintln(a.stderr, "Available models:")
	models := transcribe.Models()
	for i, m := range models {
		marker := " "
		if string(m) == current {
			marker = "*"
		}
		fmt.Fprintf(a.stderr, " %s %d) %s\n", marker, i+1, m)
	}
	fmt.Fprintf(a.stderr, "Model [%s]: ", current)

	answer, err := a.readLine()
	if err != nil && !errors.Is(err, errNoInput) {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(models) {
			return "", fmt.Errorf("model choice %d out of range 1-%d", n, len(models))
		}
		return string(models[n-1]), nil
	}
	return answer, nil
}

var errNoInput = errors.New("no input")

// readLine reads one trimmed line. EOF after some text is not an error.
func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	switch {
	case err == nil, errors.Is(err, io.EOF) && line != "":
		return strings.TrimSpace(line), nil
	case errors.Is(err, io.EOF):
		return "", errNoInput
	default:
		return "", fmt.Errorf("read input: %w", err)
	}
}

// readSecret reads without echo when stdin is a terminal.
func (a *app) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := a.readLine()
	if errors.Is(err, errNoInput) {
		return "", nil
	}
	return line, err
}

func (a *app) config() error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := config.SaveTo(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "Created default configuration\n")
	} else if cfg, err := config.LoadFrom(path); err != nil {
		fmt.Fprintf(a.stderr, "Warning: %v\n", err)
	} else if err := cfg.Validate(); err != nil {
		fmt.Fprintf(a.stderr, "Warning: %v\n", err)
	}

	fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) listDevices() error {
	devices, err := audio.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(a.stderr, "No capture devices found")
		return nil
	}
	for _, d := range devices {
		suffix := ""
		if d.IsDefault {
			suffix = " (default)"
		}
		fmt.Fprintf(a.stdout, "%d: %s%s\n", d.Index, d.Name, suffix)
	}
	return nil
}

func (a *app) history(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	n := flags.Int("n", history.DefaultLimit, "number of transcriptions to show")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	store, err := openHistory(a.log)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(ctx, *n)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.stderr, "No transcriptions yet")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintln(a.stdout, formatRecord(rec))
	}
	return nil
}

func openHistory(log *zap.Logger) (*history.Store, error) {
	path, err := history.Path()
	if err != nil {
		return nil, err
	}
	return history.Open(path, log)
}

func formatRecord(rec history.Record) string {
	return fmt.Sprintf("%s  %-30s %5.1fs  %s",
		rec.CreatedAt.Local().Format(time.DateTime),
		rec.Model,
		rec.Duration.Seconds(),
		rec.Text)
}
