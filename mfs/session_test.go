package mfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-mfs/common"
)

func TestSessionNotMounted(t *testing.T) {
	assert := assert.New(t)
	s := NewSession()
	assert.False(s.Mounted())
	assert.Nil(s.FS())

	assert.True(errors.Is(s.Unmount(), common.ErrNotMounted))
	assert.True(errors.Is(s.Save(), common.ErrNotMounted))
	assert.True(errors.Is(s.Put("x"), common.ErrNotMounted))
	assert.True(errors.Is(s.Get("x", "y"), common.ErrNotMounted))
	assert.True(errors.Is(s.Delete("x"), common.ErrNotMounted))
	assert.True(errors.Is(s.Undelete("x"), common.ErrNotMounted))
	assert.True(errors.Is(s.SetAttribute("x", common.AttrHidden, true), common.ErrNotMounted))
	assert.True(errors.Is(s.Cat("x", &bytes.Buffer{}), common.ErrNotMounted))
	assert.True(errors.Is(s.Check(), common.ErrNotMounted))
	_, err := s.List(false)
	assert.True(errors.Is(err, common.ErrNotMounted))
	_, err = s.FreeBytes()
	assert.True(errors.Is(err, common.ErrNotMounted))
}

func TestSessionSingleMount(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s := NewSession(WithClock(fixedClock))

	assert.NoError(s.CreateImage(filepath.Join(dir, "one.img")))
	assert.True(errors.Is(s.CreateImage(filepath.Join(dir, "two.img")), common.ErrAlreadyMounted))
	assert.True(errors.Is(s.Mount(filepath.Join(dir, "two.img")), common.ErrAlreadyMounted))
	assert.Equal(filepath.Join(dir, "one.img"), s.FS().Name())

	assert.NoError(s.Unmount())
	assert.False(s.Mounted())
	_, err := os.Stat(filepath.Join(dir, "one.img"))
	assert.True(os.IsNotExist(err), "unmount never saves")
}

func TestSessionScenario(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "disk.img")
	src := filepath.Join(dir, "a.txt")
	require.NoError(os.WriteFile(src, []byte("0123456789"), 0644))

	s := NewSession(WithClock(fixedClock))
	require.NoError(s.CreateImage(img))
	require.NoError(s.Save())
	require.NoError(s.Unmount())

	require.NoError(s.Mount(img))
	require.NoError(s.Put(src))
	infos, err := s.List(false)
	require.NoError(err)
	require.Len(infos, 1)
	require.Equal(uint64(10), infos[0].Size)

	require.NoError(s.Delete("a.txt"))
	infos, err = s.List(false)
	require.NoError(err)
	require.Empty(infos)

	require.NoError(s.Undelete("a.txt"))
	out := filepath.Join(dir, "out.txt")
	require.NoError(s.Get("a.txt", out))
	b, err := os.ReadFile(out)
	require.NoError(err)
	require.Equal([]byte("0123456789"), b)

	var cat bytes.Buffer
	require.NoError(s.Cat("a.txt", &cat))
	require.Equal("0123456789", cat.String())

	require.NoError(s.SetAttribute("a.txt", common.AttrReadOnly, true))
	free, err := s.FreeBytes()
	require.NoError(err)
	require.Equal((common.NumBlocks-uint64(common.DataStart)-1)*common.BlockSize, free)
	require.NoError(s.Check())
	require.NoError(s.Save())
	require.NoError(s.Unmount())

	require.NoError(s.Mount(img))
	infos, err = s.List(true)
	require.NoError(err)
	require.Len(infos, 1)
	require.True(infos[0].Attr.Has(common.AttrReadOnly))
	require.NoError(s.Unmount())
}

func TestSessionMountFailureStaysUnmounted(t *testing.T) {
	s := NewSession()
	err := s.Mount(filepath.Join(t.TempDir(), "missing.img"))
	assert.True(t, errors.Is(err, common.ErrReadError))
	assert.False(t, s.Mounted())
}
