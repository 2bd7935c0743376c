// Package inode holds the inode table: one typed record per inode slot,
// encoded into its own block only when the table is loaded or saved.
package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/disk"
	"github.com/mit-pdos/go-mfs/util"
)

// On-disk size of an inode record; the rest of its block is zero.
const INODESZ = common.MaxFilename + 4*8 + common.NumDataBlocks*4

type Inode struct {
	Name       common.Filename // copy of the owning directory entry's name
	UsedBlocks uint64
	Size       uint64
	Attr       common.Attr
	Created    int64 // unix seconds
	Blocks     []common.Bnum
}

// NBlocks is the number of data blocks a file of sz bytes occupies.
func NBlocks(sz uint64) uint64 {
	return util.RoundUp(sz, common.BlockSize)
}

// Append records bn as the inode's next direct block.
func (ip *Inode) Append(bn common.Bnum) {
	ip.Blocks = append(ip.Blocks, bn)
	ip.UsedBlocks++
}

// Direct returns the live part of the direct block list.
func (ip *Inode) Direct() []common.Bnum {
	return ip.Blocks[:ip.UsedBlocks]
}

// ChunkLen is the number of content bytes held by the i-th direct block.
func (ip *Inode) ChunkLen(i uint64) uint64 {
	off := i * common.BlockSize
	if off >= ip.Size {
		return 0
	}
	return util.Min(common.BlockSize, ip.Size-off)
}

// Validate checks the size/block-count relation and the block list bounds.
func (ip *Inode) Validate() error {
	if ip.UsedBlocks > common.NumDataBlocks || uint64(len(ip.Blocks)) < ip.UsedBlocks {
		return fmt.Errorf("%d used blocks: %w", ip.UsedBlocks, common.ErrCorruptInode)
	}
	if NBlocks(ip.Size) != ip.UsedBlocks {
		return fmt.Errorf("size %d in %d blocks: %w", ip.Size, ip.UsedBlocks, common.ErrCorruptInode)
	}
	for _, bn := range ip.Direct() {
		if addr.IsReserved(bn) || bn >= common.NumBlocks {
			return fmt.Errorf("direct block %d: %w", bn, common.ErrCorruptInode)
		}
	}
	return nil
}

func Encode(ip *Inode) disk.Block {
	blk := make(disk.Block, common.BlockSize)
	copy(blk, ip.Name.Encode())
	enc := marshal.NewEnc(INODESZ - common.MaxFilename)
	enc.PutInt(ip.UsedBlocks)
	enc.PutInt(ip.Size)
	enc.PutInt(uint64(ip.Attr))
	enc.PutInt(uint64(ip.Created))
	for i := uint64(0); i < common.NumDataBlocks; i++ {
		var bn common.Bnum
		if i < uint64(len(ip.Blocks)) {
			bn = ip.Blocks[i]
		}
		enc.PutInt32(uint32(bn))
	}
	copy(blk[common.MaxFilename:], enc.Finish())
	return blk
}

// Decode parses an inode record. Block numbers past UsedBlocks are dropped.
func Decode(blk disk.Block) (*Inode, error) {
	ip := &Inode{}
	ip.Name = common.DecodeFilename(blk[:common.MaxFilename])
	dec := marshal.NewDec(blk[common.MaxFilename:INODESZ])
	ip.UsedBlocks = dec.GetInt()
	ip.Size = dec.GetInt()
	ip.Attr = common.Attr(dec.GetInt())
	ip.Created = int64(dec.GetInt())
	if ip.UsedBlocks > common.NumDataBlocks {
		return nil, fmt.Errorf("%d used blocks: %w", ip.UsedBlocks, common.ErrCorruptInode)
	}
	ip.Blocks = make([]common.Bnum, 0, ip.UsedBlocks)
	for i := uint64(0); i < ip.UsedBlocks; i++ {
		ip.Blocks = append(ip.Blocks, common.Bnum(dec.GetInt32()))
	}
	return ip, nil
}
