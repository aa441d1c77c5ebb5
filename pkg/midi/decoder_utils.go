package midi

import (
	"encoding/binary"
	"fmt"
	"io"
)

// add offset
func (d *Decoder) readByte() (byte, error) {
	var b byte
	err := binary.Read(d.r, binary.BigEndian, &b)
	if err == nil {
		d.offset += 1 // read byte
	}
	return b, err
}

func (d *Decoder) uint7() (uint8, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return b & 0x7f, nil
}

// varLen returns the variable length value at the exact parser location.
func (d *Decoder) varLen() (uint32, error) {
	buf := make([]byte, 0, maxVarLen)

	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		buf = append(buf, b)

		if b>>7 == 0x0 {
			break
		}
		if len(buf) == maxVarLen {
			return 0, fmt.Errorf("%w - variable length quantity longer than %d bytes at offset %d", ErrUnexpectedData, maxVarLen, d.offset)
		}
	}

	val, _ := decodeVarint(buf)
	return val, nil
}

// varLenTxt skips a length-prefixed payload.
func (d *Decoder) varLenTxt() error {
	l, err := d.varLen()
	if err != nil {
		return err
	}
	return d.skip(int64(l))
}

func (d *Decoder) skip(n int64) error {
	return d.seekTo(d.offset + n)
}

func (d *Decoder) seekTo(offset int64) error {
	if _, err := d.r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	d.offset = offset
	return nil
}

// IDnSize reads a chunk ID and its length. A clean end of input before
// the ID is reported as io.EOF.
func (d *Decoder) IDnSize() ([4]byte, uint32, error) {
	var ID [4]byte
	if err := binary.Read(d.r, binary.BigEndian, &ID); err != nil {
		return ID, 0, err
	}
	d.offset += 4 // [4]byte ID

	var size uint32
	if err := binary.Read(d.r, binary.BigEndian, &size); err != nil {
		return ID, 0, noEOF(err)
	}
	d.offset += 4 // uint32 blockSize

	return ID, size, nil
}
