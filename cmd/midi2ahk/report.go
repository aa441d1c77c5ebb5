package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Garik-/midi2ahk/pkg/timeline"
)

const maxExamples = 3

type reporter interface {
	Channels(summary []timeline.ChannelSummary)
	Written(path string, commands int)
}

type consoleReporter struct {
	w io.Writer
}

func (r consoleReporter) Channels(summary []timeline.ChannelSummary) {
	fmt.Fprintln(r.w, "\nAvailable Channels (Channel: Event Count):")

	for _, s := range summary {
		line := fmt.Sprintf("  %d: %d events", s.Channel, s.Events)
		if s.HasProgram {
			line += fmt.Sprintf(" (program %d)", s.Program)
		}
		fmt.Fprintln(r.w, line)

		if s.Transposed == 0 {
			continue
		}

		examples := make([]string, 0, len(s.Examples))
		for _, n := range s.Examples {
			examples = append(examples, fmt.Sprintf("%d→%d", n.Original, n.Mapped))
		}
		fmt.Fprintf(r.w, "    * Transposed %d notes (e.g., %s)\n", s.Transposed, strings.Join(examples, ", "))
	}
}

func (r consoleReporter) Written(path string, commands int) {
	fmt.Fprintf(r.w, "\nSuccess! Generated AHK script: %s (%d key events)\n", path, commands)
}

// promptChannels asks for the channel list. End of input counts as an
// empty answer.
func promptChannels(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "\nEnter channels to include (comma-separated): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
