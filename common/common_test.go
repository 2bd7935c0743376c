package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(NumBlocks*BlockSize, ImageSize)
	assert.Equal(Bnum(128), DataStart)
	assert.True(DataStart < NumBlocks)
	assert.Equal(uint64(10240000), MaxFileSize)
}

func TestAttr(t *testing.T) {
	assert := assert.New(t)
	var a Attr
	a = a.Set(AttrHidden, true)
	assert.True(a.Has(AttrHidden))
	assert.False(a.Has(AttrReadOnly))
	a = a.Set(AttrReadOnly, true)
	assert.True(a.Has(AttrHidden))
	assert.True(a.Has(AttrReadOnly))
	a = a.Set(AttrHidden, false)
	assert.False(a.Has(AttrHidden))
	assert.True(a.Has(AttrReadOnly), "clearing one flag keeps the other")
	assert.Equal(AttrReadOnly, Attr(0xff).Set(AttrHidden, false), "unknown bits are dropped")
}

func TestFilename(t *testing.T) {
	assert := assert.New(t)

	n, err := MkFilename("a.txt")
	assert.NoError(err)
	assert.Equal(Filename("a.txt"), n)

	_, err = MkFilename(strings.Repeat("x", 32))
	assert.NoError(err, "exactly MaxFilename bytes fits")

	_, err = MkFilename(strings.Repeat("x", 33))
	assert.True(errors.Is(err, ErrNameTooLong))

	_, err = MkFilename("")
	assert.True(errors.Is(err, ErrInvalidName))

	_, err = MkFilename("a\x00b")
	assert.True(errors.Is(err, ErrInvalidName))
}

func TestFilenameEncoding(t *testing.T) {
	assert := assert.New(t)
	b := Filename("hello").Encode()
	assert.Equal(int(MaxFilename), len(b))
	assert.Equal(Filename("hello"), DecodeFilename(b))

	full := Filename(strings.Repeat("y", 32))
	assert.Equal(full, DecodeFilename(full.Encode()))
	assert.Equal(Filename(""), DecodeFilename(make([]byte, MaxFilename)))
}
