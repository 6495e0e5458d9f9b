package config

import "fmt"

// Kind classifies configuration failures.
type Kind int

const (
	// KindNotFound means the home or config directory could not be resolved.
	KindNotFound Kind = iota + 1
	// KindIO means a read, write or directory creation failed.
	KindIO
	// KindParse means the TOML was malformed or did not match the schema.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Load, Save and the path helpers.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s", e.Op)
	}
	return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
