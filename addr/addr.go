package addr

import (
	"github.com/mit-pdos/go-mfs/common"
)

// Addr identifies the start of an on-disk record.
//
// Blkno is the block number containing the record, and Off is the location of
// the record within the block (expressed as a byte offset). The size of the
// record is determined by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bytes
}

func (a Addr) Flatid() uint64 {
	return uint64(a.Blkno)*common.BlockSize + a.Off
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// DirEntryAddr locates directory slot i, packed into the directory block.
func DirEntryAddr(i uint64, entrySz uint64) Addr {
	return MkAddr(common.DirBlock, i*entrySz)
}

// InodeAddr locates inode i; each inode owns a whole block.
func InodeAddr(inum common.Inum) Addr {
	return MkAddr(common.InodeStart+common.Bnum(inum), 0)
}

// IsReserved reports whether block bn holds metadata rather than file data.
func IsReserved(bn common.Bnum) bool {
	return bn < common.DataStart
}
