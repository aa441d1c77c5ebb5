package midi

import "io"

const maxVarLen = 4

func decodeVarint(buf []byte) (x uint32, n int) {
	for _, b := range buf {
		x = x << 7
		x |= uint32(b) & 0x7F
		n++
		if b&0x80 == 0 {
			return x, n
		}
	}

	return x, n
}

func isVoiceMsgType(b byte) bool {
	return 0x8 <= b && b <= 0xE
}

// noEOF turns a bare io.EOF into io.ErrUnexpectedEOF for reads that
// happen in the middle of a chunk.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
