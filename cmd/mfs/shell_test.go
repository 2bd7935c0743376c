package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/mfs"
)

func script(t *testing.T, s *mfs.Session, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	run(s, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	return out.String()
}

func TestShellSession(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "disk.img")
	src := filepath.Join(dir, "a.txt")
	require.NoError(os.WriteFile(src, []byte("hello"), 0644))
	dest := filepath.Join(dir, "copy.txt")

	out := script(t, mfs.NewSession(),
		"createfs "+img,
		"put "+src,
		"list",
		"attrib +h a.txt",
		"list",
		"list -h",
		"cat a.txt",
		"df",
		"get a.txt "+dest,
		"check",
		"savefs",
		"close",
		"quit",
	)
	require.Contains(out, " a.txt\n")
	require.Contains(out, "No files found.\n")
	require.Contains(out, "H-        5 ")
	require.Contains(out, "hello\n")
	free := (common.NumBlocks - uint64(common.DataStart) - 1) * common.BlockSize
	require.Contains(out, fmt.Sprintf("%d bytes free.\n", free))
	require.Contains(out, "ok\n")
	require.NotContains(out, "error")

	b, err := os.ReadFile(dest)
	require.NoError(err)
	require.Equal([]byte("hello"), b)

	fi, err := os.Stat(img)
	require.NoError(err)
	require.Equal(int64(common.ImageSize), fi.Size())
}

func TestShellErrors(t *testing.T) {
	assert := assert.New(t)
	s := mfs.NewSession()
	out := script(t, s,
		"put x",
		"createfs "+filepath.Join(t.TempDir(), "d.img"),
		"open other.img",
		"del nope",
		"attrib x a.txt",
		"get",
		"frobnicate",
	)
	assert.Contains(out, "put error: no file system is currently open")
	assert.Contains(out, "open error: another file system is already open")
	assert.Contains(out, "del error: ")
	assert.Contains(out, "attrib error: expected `attrib [+|-][r|h] <file>`")
	assert.Contains(out, "get error: expected `get <file> [newfile]`")
	assert.Contains(out, "frobnicate error: unknown command")
	assert.True(s.Mounted(), "EOF leaves the session as it was")
}

func TestParseAttrib(t *testing.T) {
	assert := assert.New(t)
	f, on, err := parseAttrib("+r")
	assert.NoError(err)
	assert.Equal(common.AttrReadOnly, f)
	assert.True(on)

	f, on, err = parseAttrib("-h")
	assert.NoError(err)
	assert.Equal(common.AttrHidden, f)
	assert.False(on)

	_, _, err = parseAttrib("r")
	assert.Error(err)
	_, _, err = parseAttrib("+x")
	assert.Error(err)
}
