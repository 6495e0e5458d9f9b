package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		id, err := s.Add(ctx, Record{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Model:     "deepgram-nova-3",
			AudioPath: "/tmp/ostt-" + text + ".mp3",
			Text:      text,
			Duration:  1500 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "third", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "deepgram-nova-3", got[0].Model)
	assert.Equal(t, "/tmp/ostt-third.mp3", got[0].AudioPath)
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration)
	assert.True(t, base.Add(2*time.Minute).Equal(got[0].CreatedAt))
}

func TestRecentDefaultLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < DefaultLimit+3; i++ {
		_, err := s.Add(ctx, Record{Model: "openai-whisper-1", Text: "x"})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.Add(ctx, Record{Model: "deepgram-nova-2", Text: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Text)
}

func TestOpenUnderFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Open(filepath.Join(blocker, "history.db"), nil)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ostt", "history.db"), got)
}
