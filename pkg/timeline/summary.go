package timeline

import (
	"strconv"
	"strings"
)

type ChannelSummary struct {
	Channel    uint8
	Events     int
	Program    uint8
	HasProgram bool
	Transposed int
	Examples   []Note // first transposed notes, in decode order
}

// Summarize describes every channel with notes, keeping at most
// examples transpositions per channel.
func (tl *Timeline) Summarize(examples int) []ChannelSummary {
	buckets := tl.ByChannel()
	channels := tl.Channels()
	out := make([]ChannelSummary, 0, len(channels))

	for _, ch := range channels {
		s := ChannelSummary{Channel: ch, Events: len(buckets[ch])}
		s.Program, s.HasProgram = tl.Programs[ch]

		for _, n := range buckets[ch] {
			if !n.Transposed() {
				continue
			}
			s.Transposed++
			if len(s.Examples) < examples {
				s.Examples = append(s.Examples, n)
			}
		}

		out = append(out, s)
	}

	return out
}

// ParseChannels reads a comma separated channel list. Tokens that are
// not plain decimal numbers are dropped.
func ParseChannels(input string) []int {
	var channels []int

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" || strings.IndexFunc(token, notDigit) >= 0 {
			continue
		}

		ch, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}

	return channels
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
