package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutObjectWritesFile(t *testing.T) {
	dir := t.TempDir()
	bs, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	uri, err := bs.PutObject(context.Background(), "daily-star/2024/05/10/abc.html", "text/html",
		strings.NewReader("<html>body</html>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "file://"))

	content, err := os.ReadFile(filepath.Join(dir, "daily-star/2024/05/10/abc.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>body</html>", string(content))
}

func TestPutObjectRejectsTraversal(t *testing.T) {
	bs, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = bs.PutObject(context.Background(), "../escape.html", "", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")
	_, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
