package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeywordsFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	content := "# product names\nKubernetes\n\n  gRPC  \n# ignored\nbeta gamma\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	keywords, err := LoadKeywordsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes", "gRPC", "beta gamma"}, keywords)
}

func TestLoadKeywordsMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	keywords, err := LoadKeywords()
	require.NoError(t, err)
	assert.Empty(t, keywords)
}
