// Package inject delivers transcribed text: printed to stdout, copied to
// the clipboard, typed as keystrokes, or pasted into the active
// application using robotgo.
package inject

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Method names accepted by NewInjector.
const (
	MethodStdout    = "stdout"
	MethodClipboard = "clipboard"
	MethodType      = "type"
	MethodPaste     = "paste"
)

// TextInjector delivers a transcription.
type TextInjector interface {
	Inject(text string) error
}

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Keyboard simulates key input.
type Keyboard interface {
	Type(text string)
	KeyTap(key, modifier string) error
}

type robotgoClipboard struct{}

func (robotgoClipboard) ReadAll() (string, error)   { return robotgo.ReadAll() }
func (robotgoClipboard) WriteAll(text string) error { return robotgo.WriteAll(text) }

type robotgoKeyboard struct{}

func (robotgoKeyboard) Type(text string) { robotgo.Type(text) }

func (robotgoKeyboard) KeyTap(key, modifier string) error {
	return robotgo.KeyTap(key, modifier)
}

// Methods lists the accepted method names.
func Methods() []string {
	return []string{MethodStdout, MethodClipboard, MethodType, MethodPaste}
}

// NewInjector returns the injector for method. Empty selects stdout.
func NewInjector(method string) (TextInjector, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "", MethodStdout:
		return NewStdoutInjector(os.Stdout), nil
	case MethodClipboard:
		return NewClipboardInjector(robotgoClipboard{}), nil
	case MethodType:
		return NewKeystrokeInjector(robotgoKeyboard{}), nil
	case MethodPaste:
		return NewPasteInjector(robotgoClipboard{}, robotgoKeyboard{}), nil
	default:
		return nil, fmt.Errorf("inject: unknown output method %q (supported: %s)", method, strings.Join(Methods(), ", "))
	}
}

// StdoutInjector writes text followed by a newline.
type StdoutInjector struct {
	w io.Writer
}

// NewStdoutInjector writes to w.
func NewStdoutInjector(w io.Writer) *StdoutInjector {
	return &StdoutInjector{w: w}
}

// Inject prints text. Empty text still prints the newline so pipelines see
// one line per recording.
func (s *StdoutInjector) Inject(text string) error {
	if _, err := fmt.Fprintln(s.w, text); err != nil {
		return fmt.Errorf("inject: write output: %w", err)
	}
	return nil
}

// ClipboardInjector replaces the clipboard contents with text.
type ClipboardInjector struct {
	clipboard Clipboard
}

// NewClipboardInjector uses clipboard.
func NewClipboardInjector(clipboard Clipboard) *ClipboardInjector {
	return &ClipboardInjector{clipboard: clipboard}
}

func (c *ClipboardInjector) Inject(text string) error {
	if text == "" {
		return nil
	}
	if err := c.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}
	return nil
}

// KeystrokeInjector types text key by key. Preserves clipboard contents
// but is slower for long text.
type KeystrokeInjector struct {
	keyboard Keyboard
}

// NewKeystrokeInjector uses keyboard.
func NewKeystrokeInjector(keyboard Keyboard) *KeystrokeInjector {
	return &KeystrokeInjector{keyboard: keyboard}
}

func (k *KeystrokeInjector) Inject(text string) error {
	if text == "" {
		return nil
	}
	k.keyboard.Type(text)
	return nil
}

// PasteInjector copies text to the clipboard, sends the paste shortcut and
// restores the previous clipboard. Faster for long text.
type PasteInjector struct {
	clipboard Clipboard
	keyboard  Keyboard
	modifier  string
}

// NewPasteInjector pastes with Cmd+V on macOS and Ctrl+V elsewhere.
func NewPasteInjector(clipboard Clipboard, keyboard Keyboard) *PasteInjector {
	return &PasteInjector{
		clipboard: clipboard,
		keyboard:  keyboard,
		modifier:  pasteModifier(runtime.GOOS),
	}
}

func (p *PasteInjector) Inject(text string) error {
	if text == "" {
		return nil
	}

	prev, _ := p.clipboard.ReadAll()

	if err := p.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}

	if err := p.keyboard.KeyTap("v", p.modifier); err != nil {
		return fmt.Errorf("inject: key tap %s+v: %w", p.modifier, err)
	}

	// best effort
	_ = p.clipboard.WriteAll(prev)

	return nil
}

func pasteModifier(goos string) string {
	if goos == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
