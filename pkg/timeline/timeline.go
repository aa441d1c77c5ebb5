// Package timeline turns decoded MIDI events into absolute-time note
// events with notes moved onto the key map.
package timeline

import (
	"sort"

	"github.com/Garik-/midi2ahk/pkg/keymap"
	"github.com/Garik-/midi2ahk/pkg/midi"
)

type Kind int

const (
	NoteOn Kind = iota + 1
	NoteOff
)

func (k Kind) String() string {
	if k == NoteOn {
		return "note_on"
	}
	return "note_off"
}

type Note struct {
	Kind             Kind
	Original         uint8
	Mapped           uint8
	Channel          uint8
	TimeMicroseconds uint64
}

func (n Note) Transposed() bool {
	return n.Original != n.Mapped
}

// Observer receives every note that did not land on its own key.
type Observer func(channel uint8, t keymap.Transposition)

type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver registers a callback for transposed notes.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

type Timeline struct {
	Notes    []Note          // decode order, time ascending
	Programs map[uint8]uint8 // last program change per channel
}

// Normalize advances the clock by every event, including the ones that
// produce no note.
func Normalize(events []midi.RawEvent, km *keymap.KeyMap, opts ...Option) *Timeline {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	tl := &Timeline{Programs: make(map[uint8]uint8)}
	var now uint64

	for _, e := range events {
		now += e.DeltaMicroseconds

		var kind Kind
		switch {
		case e.Kind == midi.NoteOn && e.Velocity > 0:
			kind = NoteOn
		case e.Kind == midi.NoteOff, e.Kind == midi.NoteOn:
			kind = NoteOff
		case e.Kind == midi.ProgramChange:
			tl.Programs[e.Channel] = e.Program
			continue
		default:
			continue
		}

		t := km.Transpose(e.Note)
		if t.Changed() && o.observer != nil {
			o.observer(e.Channel, t)
		}

		tl.Notes = append(tl.Notes, Note{
			Kind:             kind,
			Original:         e.Note,
			Mapped:           t.To,
			Channel:          e.Channel,
			TimeMicroseconds: now,
		})
	}

	return tl
}

// Channels returns the channels that carry notes, ascending.
func (tl *Timeline) Channels() []uint8 {
	seen := make(map[uint8]bool)
	var channels []uint8

	for _, n := range tl.Notes {
		if !seen[n.Channel] {
			seen[n.Channel] = true
			channels = append(channels, n.Channel)
		}
	}

	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}

// ByChannel groups the notes per channel, keeping decode order.
func (tl *Timeline) ByChannel() map[uint8][]Note {
	buckets := make(map[uint8][]Note)
	for _, n := range tl.Notes {
		buckets[n.Channel] = append(buckets[n.Channel], n)
	}
	return buckets
}

// Select merges the notes of the given channels by time. Channels are
// appended in the given order before a stable sort, so equal times keep
// that order. Unknown and repeated channels are ignored.
func (tl *Timeline) Select(channels []int) []Note {
	buckets := tl.ByChannel()
	used := make(map[int]bool)
	var merged []Note

	for _, ch := range channels {
		if used[ch] || ch < 0 || ch > 0xFF {
			continue
		}
		used[ch] = true
		merged = append(merged, buckets[uint8(ch)]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TimeMicroseconds < merged[j].TimeMicroseconds
	})
	return merged
}
