package config

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeywordsPath returns the keyword list path, ~/.config/ostt/keywords.txt.
func KeywordsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "keywords.txt"), nil
}

// LoadKeywords reads the keyword list from its fixed location.
func LoadKeywords() ([]string, error) {
	path, err := KeywordsPath()
	if err != nil {
		return nil, err
	}
	return LoadKeywordsFrom(path)
}

// LoadKeywordsFrom reads one keyword per line. Blank lines and lines
// starting with # are skipped. A missing file yields no keywords.
func LoadKeywordsFrom(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Kind: KindIO, Op: "open " + path, Err: err}
	}
	defer f.Close()

	var keywords []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &Error{Kind: KindIO, Op: "read " + path, Err: err}
	}
	return keywords, nil
}
