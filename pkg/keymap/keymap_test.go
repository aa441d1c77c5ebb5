package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, keys map[uint8]string) *KeyMap {
	t.Helper()

	m, err := New(keys)
	require.NoError(t, err)
	return m
}

func TestDefault(t *testing.T) {
	m := Default()

	require.Equal(t, 24, m.Len())
	notes := m.Notes()
	assert.Equal(t, uint8(48), notes[0])
	assert.Equal(t, uint8(71), notes[len(notes)-1])

	key, ok := m.Key(60)
	assert.True(t, ok)
	assert.Equal(t, "q", key)

	_, ok = m.Key(72)
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(map[uint8]string{200: "a"})
	assert.True(t, errors.Is(err, ErrNoteOutOfRange))

	_, err = New(map[uint8]string{60: ""})
	assert.True(t, errors.Is(err, ErrEmptyKey))
}

func TestNew_Copies(t *testing.T) {
	keys := map[uint8]string{60: "q"}
	m := mustNew(t, keys)
	keys[61] = "2"

	assert.False(t, m.Playable(61))

	notes := m.Notes()
	notes[0] = 0
	assert.Equal(t, []uint8{60}, m.Notes())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "keys.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"60": "q", "62": "w"}`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint8{60, 62}, m.Notes())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"300": "q"}`), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
