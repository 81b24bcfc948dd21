package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportArchiveSave(t *testing.T) {
	archive, err := NewReportArchive(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)

	path, err := archive.Save("session-SES-1.csv", []byte("number,name\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "number,name\n", string(data))

	_, err = archive.Save("../escape.csv", []byte("x"))
	assert.Error(t, err)
	_, err = archive.Save("nested/report.csv", []byte("x"))
	assert.Error(t, err)
}

func TestReportArchivePrune(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewReportArchive(dir)
	require.NoError(t, err)

	oldPath, err := archive.Save("session-old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = archive.Save("session-new.csv", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	kept, err := archive.Prune(0)
	require.NoError(t, err)
	assert.Empty(t, kept)

	removed, err := archive.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-old.csv"}, removed)

	_, err = os.Stat(filepath.Join(dir, "session-new.csv"))
	assert.NoError(t, err)
}
