package midi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type nextChunkType int

const (
	eventChunk nextChunkType = iota + 1
	trackChunk
)

type timeFormat int

const (
	MetricalTF timeFormat = iota + 1
	TimeCodeTF
)

const (
	metaEndOfTrack = 0x2F
	metaTempo      = 0x51
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
)

// Event is one message of a track. Every message is kept, including the
// ones the converter ignores, so AbsTicks always reflects the full delta sum.
type Event struct {
	TimeDelta uint32
	AbsTicks  uint64
	MsgType   uint8 // high nibble of the status byte
	Channel   uint8
	Note      uint8
	Velocity  uint8
	Program   uint8
	MetaType  uint8
	Tempo     uint32 // microseconds per quarter note, only for tempo meta events
}

func (e *Event) isTempo() bool {
	return e.MsgType == 0xF && e.MetaType == metaTempo && e.Tempo > 0
}

type Track struct {
	Events []*Event
}

type header struct {
	Format    uint16
	NumTracks uint16
	Division  uint16
}

type Decoder struct {
	r            io.ReadSeeker
	lastStatus   byte
	currentTrack *Track
	trackEnd     int64
	ticks        uint64
	offset       int64

	Format              uint16
	TicksPerQuarterNote uint16
	FramesPerSecond     uint8 // 29 stands for 29.97 drop frame
	TicksPerFrame       uint8
	TimeFormat          timeFormat
	Tracks              []*Track
}

func (d *Decoder) Decode() error {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var code [4]byte
	d.offset = 0
	d.Tracks = nil

	if err := binary.Read(d.r, binary.BigEndian, &code); err != nil {
		return noEOF(err)
	}

	if code != headerChunkID {
		return fmt.Errorf("%w - %v", ErrFmtNotSupported, code)
	}

	var headerSize uint32
	if err := binary.Read(d.r, binary.BigEndian, &headerSize); err != nil {
		return noEOF(err)
	}

	if headerSize < 6 {
		return fmt.Errorf("%w - expected header size of at least 6, was %d", ErrFmtNotSupported, headerSize)
	}

	var h header
	if err := binary.Read(d.r, binary.BigEndian, &h); err != nil {
		return noEOF(err)
	}

	d.offset = 4 + 4 + int64(headerSize) // [4]byte code + uint32 headerSize + header body
	if _, err := d.r.Seek(d.offset, io.SeekStart); err != nil {
		return err
	}

	d.Format = h.Format
	if err := d.setDivision(h.Division); err != nil {
		return err
	}

	nextChunk := trackChunk
	var err error

	for {
		switch nextChunk {
		case eventChunk:
			nextChunk, err = d.parseEvent()
			err = noEOF(err)
		case trackChunk:
			nextChunk, err = d.parseTrack()
		}

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *Decoder) setDivision(division uint16) error {
	if (division & 0x8000) == 0 {
		d.TicksPerQuarterNote = division & 0x7FFF
		d.TimeFormat = MetricalTF
		if d.TicksPerQuarterNote == 0 {
			return fmt.Errorf("%w - zero ticks per quarter note", ErrFmtNotSupported)
		}
		return nil
	}

	d.TimeFormat = TimeCodeTF
	d.FramesPerSecond = uint8(-int8(division >> 8))
	d.TicksPerFrame = uint8(division & 0xFF)

	switch d.FramesPerSecond {
	case 24, 25, 29, 30:
	default:
		return fmt.Errorf("%w - SMPTE rate of %d frames per second", ErrFmtNotSupported, d.FramesPerSecond)
	}
	if d.TicksPerFrame == 0 {
		return fmt.Errorf("%w - zero ticks per frame", ErrFmtNotSupported)
	}
	return nil
}

// parseTrack reads the next chunk header. Chunks other than MTrk are skipped.
func (d *Decoder) parseTrack() (nextChunkType, error) {
	id, size, err := d.IDnSize()
	if err != nil {
		return trackChunk, err
	}

	if id != trackChunkID {
		return trackChunk, d.seekTo(d.offset + int64(size))
	}

	d.currentTrack = new(Track)
	d.Tracks = append(d.Tracks, d.currentTrack)
	d.trackEnd = d.offset + int64(size)
	d.ticks = 0
	d.lastStatus = 0

	if size == 0 {
		return trackChunk, nil
	}
	return eventChunk, nil
}

func (d *Decoder) parseEvent() (nextChunkType, error) {
	timeDelta, err := d.varLen()
	if err != nil {
		return eventChunk, err
	}
	d.ticks += uint64(timeDelta)

	// status byte give us the msg type and channel.
	statusByte, err := d.readByte()
	if err != nil {
		return eventChunk, err
	}

	if statusByte&0x80 == 0 {
		if !isVoiceMsgType(d.lastStatus >> 4) {
			return eventChunk, fmt.Errorf("%w - data byte %#x without running status at offset %d", ErrUnexpectedData, statusByte, d.offset-1)
		}
		statusByte = d.lastStatus
		if err := d.seekTo(d.offset - 1); err != nil {
			return eventChunk, err
		}
	}

	e := &Event{
		TimeDelta: timeDelta,
		AbsTicks:  d.ticks,
		MsgType:   statusByte >> 4,
		Channel:   statusByte & 0x0F,
	}

	nextChunk := eventChunk

	// Extract values based on message type
	switch e.MsgType {
	case 0x8, 0x9:
		d.lastStatus = statusByte
		if e.Note, err = d.uint7(); err != nil {
			return eventChunk, err
		}
		if e.Velocity, err = d.uint7(); err != nil {
			return eventChunk, err
		}

	case 0xA, 0xB, 0xE:
		d.lastStatus = statusByte
		if err := d.skip(2); err != nil {
			return eventChunk, err
		}

	case 0xC:
		d.lastStatus = statusByte
		if e.Program, err = d.uint7(); err != nil {
			return eventChunk, err
		}

	case 0xD:
		d.lastStatus = statusByte
		if err := d.skip(1); err != nil {
			return eventChunk, err
		}

	case 0xF:
		d.lastStatus = 0
		e.Channel = 0
		if nextChunk, err = d.parseSystemMsg(statusByte, e); err != nil {
			return eventChunk, err
		}
	}

	d.currentTrack.Events = append(d.currentTrack.Events, e)

	if nextChunk == eventChunk && d.offset >= d.trackEnd {
		nextChunk = trackChunk
	}
	return nextChunk, nil
}

func (d *Decoder) parseSystemMsg(statusByte byte, e *Event) (nextChunkType, error) {
	switch statusByte {
	case 0xF0, 0xF7:
		return eventChunk, d.varLenTxt()
	case 0xFF:
		return d.parseMetaMsg(e)
	}
	return eventChunk, fmt.Errorf("%w - status %#x at offset %d", ErrUnexpectedData, statusByte, d.offset-1)
}

func (d *Decoder) parseMetaMsg(e *Event) (nextChunkType, error) {
	var err error
	if e.MetaType, err = d.readByte(); err != nil {
		return eventChunk, err
	}

	length, err := d.varLen()
	if err != nil {
		return eventChunk, err
	}

	switch {
	case e.MetaType == metaEndOfTrack:
		// anything left in the chunk after the end of track is padding
		return trackChunk, d.seekTo(d.trackEnd)

	case e.MetaType == metaTempo && length == 3:
		var b [3]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return eventChunk, err
		}
		d.offset += 3
		e.Tempo = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		return eventChunk, nil
	}

	return eventChunk, d.skip(int64(length))
}

func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{r: r, offset: 0}
}
