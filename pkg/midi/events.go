package midi

import "sort"

const defaultTempo = 500000 // microseconds per quarter note, 120 bpm

type StatusKind int

const (
	Other StatusKind = iota
	NoteOn
	NoteOff
	ProgramChange
)

func (k StatusKind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ProgramChange:
		return "program_change"
	}
	return "other"
}

// RawEvent is a decoded message placed on the song's time line. A NoteOn
// with zero velocity is reported as is.
type RawEvent struct {
	Kind              StatusKind
	Channel           uint8
	Note              uint8
	Velocity          uint8
	Program           uint8
	DeltaMicroseconds uint64 // since the previous event of the merged stream
}

// Events merges all decoded tracks by absolute tick and converts the
// ticks to microseconds with the file's tempo map.
func (d *Decoder) Events() []RawEvent {
	merged := d.merge()
	c := newClock(d)

	out := make([]RawEvent, 0, len(merged))
	var prev uint64

	for _, e := range merged {
		now := c.at(e.AbsTicks)
		if e.isTempo() {
			c.setTempo(e.Tempo)
		}

		out = append(out, RawEvent{
			Kind:              kindOf(e),
			Channel:           e.Channel,
			Note:              e.Note,
			Velocity:          e.Velocity,
			Program:           e.Program,
			DeltaMicroseconds: now - prev,
		})
		prev = now
	}

	return out
}

func (d *Decoder) merge() []*Event {
	var n int
	for _, track := range d.Tracks {
		n += len(track.Events)
	}

	merged := make([]*Event, 0, n)
	for _, track := range d.Tracks {
		merged = append(merged, track.Events...)
	}

	// ties keep track order, then the order inside the track
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].AbsTicks < merged[j].AbsTicks
	})
	return merged
}

func kindOf(e *Event) StatusKind {
	switch e.MsgType {
	case 0x9:
		return NoteOn
	case 0x8:
		return NoteOff
	case 0xC:
		return ProgramChange
	}
	return Other
}

// clock converts absolute ticks to microseconds. acc holds elapsed time
// scaled by div, so no rounding error builds up across tempo changes.
type clock struct {
	metrical bool
	perTick  uint64
	div      uint64
	acc      uint64
	lastTick uint64
}

func newClock(d *Decoder) *clock {
	if d.TimeFormat == TimeCodeTF {
		fps := uint64(d.FramesPerSecond) * 100
		if d.FramesPerSecond == 29 {
			fps = 2997
		}
		return &clock{perTick: 100 * 1000000, div: fps * uint64(d.TicksPerFrame)}
	}

	return &clock{metrical: true, perTick: defaultTempo, div: uint64(d.TicksPerQuarterNote)}
}

func (c *clock) at(tick uint64) uint64 {
	c.acc += (tick - c.lastTick) * c.perTick
	c.lastTick = tick
	return c.acc / c.div
}

// setTempo only affects metrical time, SMPTE time is absolute.
func (c *clock) setTempo(microsPerQuarter uint32) {
	if c.metrical {
		c.perTick = uint64(microsPerQuarter)
	}
}
