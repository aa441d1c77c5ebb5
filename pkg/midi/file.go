package midi

import (
	"bytes"
	"fmt"
	"os"
)

// DecodeError reports a MIDI file that could not be read or parsed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeFile reads the whole file into memory and decodes it.
func DecodeFile(path string) (*Decoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	decoder := NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	return decoder, nil
}
