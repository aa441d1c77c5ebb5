package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Garik-/midi2ahk/pkg/ahk"
	"github.com/Garik-/midi2ahk/pkg/keymap"
	"github.com/Garik-/midi2ahk/pkg/midi"
	"github.com/Garik-/midi2ahk/pkg/timeline"
	"github.com/urfave/cli/v3"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

var errNoInput = errors.New("expected exactly one midi file")

type options struct {
	input       string
	output      string
	keymapPath  string
	channels    string
	channelsSet bool
	script      ahk.Script
}

func convert(opts options, stdin io.Reader, stdout io.Writer, rep reporter) error {
	log := convertLog.Named("convert")

	km := keymap.Default()
	if opts.keymapPath != "" {
		var err error
		if km, err = keymap.Load(opts.keymapPath); err != nil {
			return err
		}
	}
	log.Debug("keymap", zap.Int("keys", km.Len()))

	decoder, err := midi.DecodeFile(opts.input)
	if err != nil {
		return err
	}

	events := decoder.Events()
	log.Debug("decoded",
		zap.String("name", opts.input),
		zap.Int("tracks", len(decoder.Tracks)),
		zap.Int("events", len(events)),
	)

	tl := timeline.Normalize(events, km, timeline.WithObserver(logTransposition))
	rep.Channels(tl.Summarize(maxExamples))

	selection := opts.channels
	if !opts.channelsSet {
		if selection, err = promptChannels(stdin, stdout); err != nil {
			return err
		}
	}

	channels := timeline.ParseChannels(selection)
	notes := tl.Select(channels)
	cmds := ahk.Commands(notes, km)
	log.Debug("selected", zap.Ints("channels", channels), zap.Int("notes", len(notes)), zap.Int("commands", len(cmds)))

	output := opts.output
	if output == "" {
		output = ahk.OutputPath(opts.input)
	}

	if err := opts.script.WriteFile(output, cmds); err != nil {
		return err
	}

	rep.Written(output, len(cmds))
	return nil
}

func logTransposition(channel uint8, t keymap.Transposition) {
	transposeLog.Debug("transposed",
		zap.Uint8("channel", channel),
		zap.Uint8("from", t.From),
		zap.Stringer("fromName", gomidi.Note(t.From)),
		zap.Uint8("to", t.To),
		zap.Stringer("toName", gomidi.Note(t.To)),
		zap.Stringer("reason", t.Reason),
	)
}

func newCommand() *cli.Command {
	def := ahk.DefaultScript()

	return &cli.Command{
		Name:      "midi2ahk",
		Usage:     "Convert a MIDI file into an AutoHotkey key macro",
		ArgsUsage: "<file.mid>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "keymap",
				Aliases: []string{"k"},
				Usage:   "JSON file of note numbers to keys, the built-in 48-71 layout when empty",
			},
			&cli.StringFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "comma-separated channels to include, asked interactively when not set",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output script, the input name with the .ahk extension when empty",
			},
			&cli.StringFlag{
				Name:  "toggle",
				Value: def.Toggle,
				Usage: "hotkey that starts playback",
			},
			&cli.StringFlag{
				Name:  "exit",
				Value: def.Exit,
				Usage: "hotkey that quits the script",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log decoding and transposition details to stderr",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errNoInput
			}

			if c.Bool("debug") {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer l.Sync()
				enableDebugLogging(l)
			}

			opts := options{
				input:       c.Args().First(),
				output:      c.String("out"),
				keymapPath:  c.String("keymap"),
				channels:    c.String("channels"),
				channelsSet: c.IsSet("channels"),
				script:      ahk.Script{Toggle: c.String("toggle"), Exit: c.String("exit")},
			}

			return convert(opts, os.Stdin, os.Stdout, consoleReporter{w: os.Stdout})
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
