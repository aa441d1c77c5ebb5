package ahk

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garik-/midi2ahk/pkg/keymap"
	"github.com/Garik-/midi2ahk/pkg/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `#Requires AutoHotkey v2.0
#SingleInstance Force
SendMode "Input"
SetWorkingDir A_ScriptDir

~::PlaySong()
Esc::ExitApp()

PlaySong() {
`

func note(kind timeline.Kind, n uint8, us uint64) timeline.Note {
	return timeline.Note{Kind: kind, Original: n, Mapped: n, TimeMicroseconds: us}
}

func mustKeyMap(t *testing.T, keys map[uint8]string) *keymap.KeyMap {
	t.Helper()

	km, err := keymap.New(keys)
	require.NoError(t, err)
	return km
}

func TestCommands_PressSleepRelease(t *testing.T) {
	km := mustKeyMap(t, map[uint8]string{60: "q"})
	notes := []timeline.Note{
		note(timeline.NoteOn, 60, 0),
		note(timeline.NoteOff, 60, 500000),
	}

	cmds := Commands(notes, km)
	assert.Equal(t, []Command{
		{Action: Press, Key: "q", DelayMs: 0},
		{Action: Release, Key: "q", DelayMs: 500},
	}, cmds)

	assert.Equal(t, header+
		"    Send(\"{q down}\")\n"+
		"    Sleep 500\n"+
		"    Send(\"{q up}\")\n"+
		"}\n", DefaultScript().Render(cmds))
}

func TestCommands_SkipsUnmappedNotes(t *testing.T) {
	km := mustKeyMap(t, map[uint8]string{60: "q"})
	notes := []timeline.Note{
		note(timeline.NoteOn, 60, 1000),
		note(timeline.NoteOn, 90, 3000),
		note(timeline.NoteOff, 60, 4000),
	}

	cmds := Commands(notes, km)
	require.Len(t, cmds, 2)
	// the skipped note still consumes the time before it
	assert.Equal(t, 1.0, cmds[0].DelayMs)
	assert.Equal(t, 1.0, cmds[1].DelayMs)
}

func TestScript_NoLeadingWait(t *testing.T) {
	cmds := []Command{
		{Action: Press, Key: "q", DelayMs: 1500},
		{Action: Release, Key: "q", DelayMs: 250},
	}

	out := DefaultScript().Render(cmds)
	body := strings.TrimPrefix(out, header)
	assert.True(t, strings.HasPrefix(body, "    Send(\"{q down}\")\n"), body)
	assert.Equal(t, 1, strings.Count(out, "Sleep"))
}

func TestScript_FirstEmittedAfterSkipDoesNotWait(t *testing.T) {
	km := mustKeyMap(t, map[uint8]string{60: "q"})
	notes := []timeline.Note{
		note(timeline.NoteOn, 90, 0),
		note(timeline.NoteOn, 60, 700000),
	}

	out := DefaultScript().Render(Commands(notes, km))
	assert.NotContains(t, out, "Sleep")
	assert.Contains(t, out, "{q down}")
}

func TestScript_Rounding(t *testing.T) {
	cmds := []Command{
		{Action: Press, Key: "q"},
		{Action: Press, Key: "w", DelayMs: 0.3},
		{Action: Press, Key: "e", DelayMs: 2.5},
		{Action: Press, Key: "r", DelayMs: 3.5},
		{Action: Press, Key: "t", DelayMs: 10.6},
		{Action: Release, Key: "t", DelayMs: 0},
	}

	out := DefaultScript().Render(cmds)
	assert.Equal(t, header+
		"    Send(\"{q down}\")\n"+
		"    Sleep 0\n"+
		"    Send(\"{w down}\")\n"+
		"    Sleep 2\n"+
		"    Send(\"{e down}\")\n"+
		"    Sleep 4\n"+
		"    Send(\"{r down}\")\n"+
		"    Sleep 11\n"+
		"    Send(\"{t down}\")\n"+
		"    Send(\"{t up}\")\n"+
		"}\n", out)
}

func TestScript_Empty(t *testing.T) {
	out := DefaultScript().Render(nil)
	assert.Equal(t, header+"}\n", out)
	assert.NotContains(t, out, "Send(")
}

func TestScript_Hotkeys(t *testing.T) {
	out := Script{Toggle: "F1", Exit: "F2"}.Render(nil)
	assert.Contains(t, out, "F1::PlaySong()\n")
	assert.Contains(t, out, "F2::ExitApp()\n")
}

func TestScript_Encode(t *testing.T) {
	var buf bytes.Buffer
	cmds := []Command{{Action: Press, Key: "q"}}

	n, err := DefaultScript().Encode(&buf, cmds)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
}

func TestScript_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.ahk")
	cmds := []Command{{Action: Press, Key: "q"}}

	require.NoError(t, DefaultScript().WriteFile(path, cmds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultScript().Render(cmds), string(data))

	err = DefaultScript().WriteFile(filepath.Join(t.TempDir(), "missing", "song.ahk"), cmds)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "In the hall of the Mountain King.ahk", OutputPath("In the hall of the Mountain King.mid"))
	assert.Equal(t, filepath.Join("songs", "a.ahk"), OutputPath(filepath.Join("songs", "a.midi")))
	assert.Equal(t, "song.ahk", OutputPath("song"))
}
