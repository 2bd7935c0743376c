package common

import (
	"bytes"
	"fmt"
	"strings"
)

// Filename is a file name known to fit in MaxFilename bytes.
type Filename string

func MkFilename(s string) (Filename, error) {
	if s == "" {
		return "", ErrInvalidName
	}
	if uint64(len(s)) > MaxFilename {
		return "", fmt.Errorf("%q: %w", s, ErrNameTooLong)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidName)
	}
	return Filename(s), nil
}

// Encode returns the name as a NUL-padded MaxFilename byte field.
func (n Filename) Encode() []byte {
	b := make([]byte, MaxFilename)
	copy(b, n)
	return b
}

// DecodeFilename reads a NUL-padded name field. Bytes past the first NUL are
// ignored.
func DecodeFilename(b []byte) Filename {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if uint64(len(b)) > MaxFilename {
		b = b[:MaxFilename]
	}
	return Filename(b)
}
