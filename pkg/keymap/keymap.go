// Package keymap holds the note to keyboard layout of the virtual
// instrument and maps unplayable notes onto it.
package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	// ErrNoteOutOfRange is returned for note numbers above 127.
	ErrNoteOutOfRange = errors.New("note out of range")
	// ErrEmptyKey is returned for a note bound to an empty key.
	ErrEmptyKey = errors.New("empty key")
)

// KeyMap is a read-only mapping from playable note numbers to keys.
type KeyMap struct {
	keys  map[uint8]string
	notes []uint8 // ascending
}

// reference layout: two octaves starting at C3
var defaultLayout = map[uint8]string{
	48: "z", 49: "s", 50: "x", 51: "d", 52: "c", 53: "v", 54: "g",
	55: "b", 56: "h", 57: "n", 58: "j", 59: "m", 60: "q", 61: "2",
	62: "w", 63: "3", 64: "e", 65: "r", 66: "5", 67: "t", 68: "6",
	69: "y", 70: "7", 71: "u",
}

// New copies keys into a KeyMap.
func New(keys map[uint8]string) (*KeyMap, error) {
	m := &KeyMap{
		keys:  make(map[uint8]string, len(keys)),
		notes: make([]uint8, 0, len(keys)),
	}

	for note, key := range keys {
		if note > 127 {
			return nil, fmt.Errorf("%w: %d", ErrNoteOutOfRange, note)
		}
		if key == "" {
			return nil, fmt.Errorf("%w for note %d", ErrEmptyKey, note)
		}
		m.keys[note] = key
		m.notes = append(m.notes, note)
	}

	sort.Slice(m.notes, func(i, j int) bool { return m.notes[i] < m.notes[j] })
	return m, nil
}

// Default returns the reference layout, notes 48 to 71.
func Default() *KeyMap {
	m, err := New(defaultLayout)
	if err != nil {
		panic(err)
	}
	return m
}

// Load reads a JSON object of note numbers to keys, e.g. {"60": "q"}.
func Load(name string) (*KeyMap, error) {
	bytes, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var keys map[uint8]string
	if err := json.Unmarshal(bytes, &keys); err != nil {
		return nil, fmt.Errorf("keymap %s: %w", name, err)
	}

	m, err := New(keys)
	if err != nil {
		return nil, fmt.Errorf("keymap %s: %w", name, err)
	}
	return m, nil
}

func (m *KeyMap) Key(note uint8) (string, bool) {
	key, ok := m.keys[note]
	return key, ok
}

func (m *KeyMap) Playable(note uint8) bool {
	_, ok := m.keys[note]
	return ok
}

// Notes returns the playable notes in ascending order.
func (m *KeyMap) Notes() []uint8 {
	return append([]uint8(nil), m.notes...)
}

func (m *KeyMap) Len() int {
	return len(m.notes)
}
