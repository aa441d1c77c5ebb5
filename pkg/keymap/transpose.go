package keymap

type Reason int

const (
	Exact Reason = iota
	PitchClass
	Nearest
)

func (r Reason) String() string {
	switch r {
	case PitchClass:
		return "preserved pitch class"
	case Nearest:
		return "nearest available"
	}
	return "exact"
}

// Transposition describes where a note ended up on the key map.
type Transposition struct {
	From   uint8
	To     uint8
	Reason Reason
}

func (t Transposition) Changed() bool {
	return t.From != t.To
}

// Map returns note itself when it is playable, otherwise the closest
// playable note of the same pitch class, otherwise the closest playable
// note. Equidistant candidates resolve to the lower note.
func (m *KeyMap) Map(note uint8) uint8 {
	return m.Transpose(note).To
}

// Transpose is Map with the reason for the result. A key map without
// notes leaves every note unchanged.
func (m *KeyMap) Transpose(note uint8) Transposition {
	if m.Playable(note) || len(m.notes) == 0 {
		return Transposition{From: note, To: note, Reason: Exact}
	}

	if to, ok := closest(m.notes, note, func(n uint8) bool { return n%12 == note%12 }); ok {
		return Transposition{From: note, To: to, Reason: PitchClass}
	}

	to, _ := closest(m.notes, note, func(uint8) bool { return true })
	return Transposition{From: note, To: to, Reason: Nearest}
}

// closest scans ascending notes, so only a strictly closer candidate
// replaces the current best.
func closest(notes []uint8, target uint8, accept func(uint8) bool) (uint8, bool) {
	var (
		best  uint8
		found bool
		dist  int
	)

	for _, n := range notes {
		if !accept(n) {
			continue
		}

		d := distance(n, target)
		if !found || d < dist {
			best, dist, found = n, d, true
		}
	}

	return best, found
}

func distance(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
