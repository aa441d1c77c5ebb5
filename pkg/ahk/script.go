// Package ahk renders note timelines as AutoHotkey v2 key macros.
package ahk

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Garik-/midi2ahk/pkg/keymap"
	"github.com/Garik-/midi2ahk/pkg/timeline"
)

const Ext = ".ahk"

type Action int

const (
	Press Action = iota + 1
	Release
)

func (a Action) String() string {
	if a == Press {
		return "down"
	}
	return "up"
}

// Command is one key event. DelayMs is the time since the previous note
// of the merged timeline, whether that note was emitted or not.
type Command struct {
	Action  Action
	Key     string
	DelayMs float64
}

// Commands converts notes to key commands. Notes without a key are
// skipped.
func Commands(notes []timeline.Note, km *keymap.KeyMap) []Command {
	cmds := make([]Command, 0, len(notes))
	var prevMs float64

	for _, n := range notes {
		nowMs := float64(n.TimeMicroseconds) / 1000
		delay := nowMs - prevMs
		prevMs = nowMs

		key, ok := km.Key(n.Mapped)
		if !ok {
			continue
		}

		action := Release
		if n.Kind == timeline.NoteOn {
			action = Press
		}

		cmds = append(cmds, Command{Action: action, Key: key, DelayMs: delay})
	}

	return cmds
}

// Script holds the hotkeys of the generated macro.
type Script struct {
	Toggle string // starts playback
	Exit   string // quits the script
}

func DefaultScript() Script {
	return Script{Toggle: "~", Exit: "Esc"}
}

// Encode writes the macro. The first command never waits; the others
// wait for their delay rounded half to even when it is positive.
func (s Script) Encode(w io.Writer, cmds []Command) (int64, error) {
	cw := &countWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, `#Requires AutoHotkey v2.0
#SingleInstance Force
SendMode "Input"
SetWorkingDir A_ScriptDir

%s::PlaySong()
%s::ExitApp()

PlaySong() {
`, s.Toggle, s.Exit)

	for i, cmd := range cmds {
		if i > 0 && cmd.DelayMs > 0 {
			fmt.Fprintf(cw, "    Sleep %d\n", int64(math.RoundToEven(cmd.DelayMs)))
		}
		fmt.Fprintf(cw, "    Send(\"{%s %s}\")\n", cmd.Key, cmd.Action)
	}

	fmt.Fprint(cw, "}\n")

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// Render returns the macro as a string.
func (s Script) Render(cmds []Command) string {
	var b strings.Builder
	s.Encode(&b, cmds) // strings.Builder never fails
	return b.String()
}

// WriteFile creates or truncates path with the macro.
func (s Script) WriteFile(path string, cmds []Command) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := s.Encode(f, cmds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OutputPath keeps the base name of input and swaps the extension.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + Ext
}

// countWriter keeps the first error so rendering can ignore it per line.
type countWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
