package disk

import (
	"fmt"

	gdisk "github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/util"
)

// Each file system block spans this many sectors of the backing goose disk.
const sectorsPerBlock = common.BlockSize / gdisk.BlockSize

var _ Disk = (*MemDisk)(nil)

// MemDisk is an in-memory block store of BlockSize blocks, backed by a goose
// memory disk.
type MemDisk struct {
	sectors   gdisk.Disk
	numBlocks uint64
	closed    bool
}

// NewMemDisk returns a zero-filled disk of numBlocks blocks.
func NewMemDisk(numBlocks uint64) *MemDisk {
	return &MemDisk{
		sectors:   gdisk.NewMemDisk(numBlocks * sectorsPerBlock),
		numBlocks: numBlocks,
	}
}

func (d *MemDisk) check(op string, a uint64) error {
	if d.closed {
		return common.ErrNotMounted
	}
	if a >= d.numBlocks {
		return fmt.Errorf("out-of-bounds %s at %v", op, a)
	}
	return nil
}

func (d *MemDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != common.BlockSize {
		return fmt.Errorf("buf is not block-sized (%d bytes)", len(buf))
	}
	if err := d.check("read", a); err != nil {
		return err
	}
	for i := uint64(0); i < sectorsPerBlock; i++ {
		copy(buf[i*gdisk.BlockSize:], d.sectors.Read(a*sectorsPerBlock+i))
	}
	util.DPrintf(20, "read: %v\n", a)
	return nil
}

func (d *MemDisk) Read(a uint64) (Block, error) {
	buf := make(Block, common.BlockSize)
	err := d.ReadTo(a, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *MemDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != common.BlockSize {
		return fmt.Errorf("v is not block-sized (%d bytes)", len(v))
	}
	if err := d.check("write", a); err != nil {
		return err
	}
	for i := uint64(0); i < sectorsPerBlock; i++ {
		d.sectors.Write(a*sectorsPerBlock+i, v[i*gdisk.BlockSize:(i+1)*gdisk.BlockSize])
	}
	util.DPrintf(20, "write: %v\n", a)
	return nil
}

func (d *MemDisk) Size() (uint64, error) {
	if d.closed {
		return 0, common.ErrNotMounted
	}
	return d.numBlocks, nil
}

func (d *MemDisk) Close() error {
	if d.closed {
		return common.ErrNotMounted
	}
	d.closed = true
	d.sectors.Close()
	d.sectors = nil
	return nil
}
