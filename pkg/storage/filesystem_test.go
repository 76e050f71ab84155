package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("ana.json", []byte(`{"a":1}`)))
	require.NoError(t, store.Save("ana.json", []byte(`{"a":2}`)))

	data, err := store.Read("ana.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	require.NoError(t, store.Delete("ana.json"))
	require.NoError(t, store.Delete("ana.json"))

	_, err = store.Read("ana.json")
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestLocalStorageSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("ben.json", []byte("{}")))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ben.json", files[0].Name())
}

func TestLocalStorageListSkipsHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("cara.json", []byte("{}")))
	require.NoError(t, store.Save("ana.json", []byte("{}")))
	require.NoError(t, store.Save("notes.txt", []byte("x")))
	require.NoError(t, store.Save(".hidden.json", []byte("{}")))
	require.NoError(t, store.Save(filepath.Join(".logs", "deletion_log.json"), []byte("{}")))

	entries, err := store.List(".json")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ana.json", entries[0].Name)
	assert.Equal(t, "cara.json", entries[1].Name)
	assert.False(t, entries[0].ModTime.IsZero())
}

func TestLocalStorageResolveStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "etc", "passwd"), store.Path("../../etc/passwd"))
}
