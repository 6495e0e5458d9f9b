// Package auth stores the active transcription model and provider API
// keys in ~/.config/ostt/credentials.toml.
package auth

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/chaz8081/ostt/internal/config"
)

// Credentials holds the model selection and API keys keyed by provider.
type Credentials struct {
	Model   string            `toml:"model"`
	APIKeys map[string]string `toml:"api_keys"`
}

// Path returns the credentials file path.
func Path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.toml"), nil
}

// Load reads credentials from the default path.
func Load() (*Credentials, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads credentials from path. A missing file yields empty
// credentials.
func LoadFrom(path string) (*Credentials, error) {
	creds := &Credentials{APIKeys: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), creds); err != nil {
		return nil, fmt.Errorf("auth: parse %s: %w", path, err)
	}
	if creds.APIKeys == nil {
		creds.APIKeys = map[string]string{}
	}
	return creds, nil
}

// Save writes credentials to the default path.
func Save(creds *Credentials) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, creds)
}

// SaveTo writes credentials to path, readable only by the owner.
func SaveTo(path string, creds *Credentials) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("auth: encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("auth: create %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("auth: write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("auth: chmod %s: %w", path, err)
	}

	zap.L().Info("credentials saved", zap.String("path", path), zap.String("model", creds.Model))
	return nil
}

// Key returns the API key stored for provider.
func (c *Credentials) Key(provider string) (string, bool) {
	key, ok := c.APIKeys[provider]
	return key, ok && key != ""
}

// SetKey stores the API key for provider.
func (c *Credentials) SetKey(provider, key string) {
	if c.APIKeys == nil {
		c.APIKeys = map[string]string{}
	}
	c.APIKeys[provider] = key
}
