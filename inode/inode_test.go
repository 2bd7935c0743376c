package inode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/disk"
)

func mkInode(sz uint64, first common.Bnum) *Inode {
	ip := &Inode{Name: "file.bin", Size: sz, Attr: common.AttrHidden, Created: 1700000000}
	for i := uint64(0); i < NBlocks(sz); i++ {
		ip.Append(first + common.Bnum(i))
	}
	return ip
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	ip := mkInode(3*common.BlockSize+5, common.DataStart+7)

	blk := Encode(ip)
	assert.Equal(int(common.BlockSize), len(blk))
	ip2, err := Decode(blk)
	assert.NoError(err)
	assert.Equal(ip, ip2)
	assert.NoError(ip2.Validate())
}

func TestDecodeZero(t *testing.T) {
	assert := assert.New(t)
	ip, err := Decode(make(disk.Block, common.BlockSize))
	assert.NoError(err)
	assert.Equal(common.Filename(""), ip.Name)
	assert.Equal(uint64(0), ip.UsedBlocks)
	assert.Empty(ip.Direct())
}

func TestDecodeTooManyBlocks(t *testing.T) {
	blk := make(disk.Block, common.BlockSize)
	enc := marshal.NewEnc(8)
	enc.PutInt(common.NumDataBlocks + 1)
	copy(blk[common.MaxFilename:], enc.Finish())

	_, err := Decode(blk)
	assert.True(t, errors.Is(err, common.ErrCorruptInode))
}

func TestChunkLen(t *testing.T) {
	assert := assert.New(t)
	ip := mkInode(2*common.BlockSize+10, common.DataStart)
	assert.Equal(common.BlockSize, ip.ChunkLen(0))
	assert.Equal(common.BlockSize, ip.ChunkLen(1))
	assert.Equal(uint64(10), ip.ChunkLen(2))
	assert.Equal(uint64(0), ip.ChunkLen(3))

	exact := mkInode(2*common.BlockSize, common.DataStart)
	assert.Equal(uint64(2), exact.UsedBlocks)
	assert.Equal(common.BlockSize, exact.ChunkLen(1), "evenly divisible size ends on a full block")

	one := mkInode(1, common.DataStart)
	assert.Equal(uint64(1), one.ChunkLen(0))
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)
	assert.NoError((&Inode{}).Validate())

	ip := mkInode(common.BlockSize+1, common.DataStart)
	ip.Size = common.BlockSize
	assert.True(errors.Is(ip.Validate(), common.ErrCorruptInode), "size fits in fewer blocks")

	ip = mkInode(10, 0)
	assert.True(errors.Is(ip.Validate(), common.ErrCorruptInode), "reserved block in list")

	ip = mkInode(10, common.NumBlocks)
	assert.True(errors.Is(ip.Validate(), common.ErrCorruptInode), "block past the end")
}

func TestTableLoadSave(t *testing.T) {
	require := require.New(t)
	d := disk.NewMemDisk(common.NumBlocks)

	tbl := MkTable(common.MaxFiles)
	ip := mkInode(100, common.DataStart+3)
	tbl.Set(4, ip)
	require.NoError(tbl.Save(d))

	tbl2, err := Load(d)
	require.NoError(err)
	got, err := tbl2.Get(4)
	require.NoError(err)
	require.Equal(ip, got)

	_, err = tbl2.Get(common.Inum(common.MaxFiles))
	require.True(errors.Is(err, common.ErrCorruptInode))
}

func TestTableCorruptSlot(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(common.NumBlocks)

	blk := make(disk.Block, common.BlockSize)
	enc := marshal.NewEnc(8)
	enc.PutInt(1 << 40)
	copy(blk[common.MaxFilename:], enc.Finish())
	assert.NoError(d.Write(addr.InodeAddr(2).Blkno, blk))

	tbl, err := Load(d)
	assert.NoError(err, "a damaged record does not fail the whole load")
	_, err = tbl.Get(2)
	assert.True(errors.Is(err, common.ErrCorruptInode))
	_, err = tbl.Get(3)
	assert.NoError(err)

	assert.NoError(tbl.Save(d))
	raw, _ := d.Read(addr.InodeAddr(2).Blkno)
	assert.Equal(blk, raw, "corrupt record is left as it was")

	tbl.Reset(2)
	_, err = tbl.Get(2)
	assert.NoError(err)
}
