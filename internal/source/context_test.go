package source

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadContextText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("둘째"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("첫째"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	text, err := LoadContextText(dir, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "첫째\n\n둘째", text)
}

func TestLoadContextText_MissingDir(t *testing.T) {
	text, err := LoadContextText(filepath.Join(t.TempDir(), "chatbot"), discardLogger())
	require.NoError(t, err)
	assert.Empty(t, text)

	text, err = LoadContextText("", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, text)
}
