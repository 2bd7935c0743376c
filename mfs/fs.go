// Package mfs implements the file operations of a small flat filesystem kept
// in a fixed-size disk image: one directory, one block per inode, direct
// blocks only, and soft delete with undelete.
//
// A FileSys is one mounted image. Directory, inode table and both free maps
// live as typed records in memory; they are written into their reserved
// blocks only when the image is saved.
package mfs

import (
	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/alloc"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/dir"
	"github.com/mit-pdos/go-mfs/disk"
	"github.com/mit-pdos/go-mfs/inode"
	"github.com/mit-pdos/go-mfs/util"
)

type FileSys struct {
	name   string // host path of the image
	d      disk.Disk
	dir    *dir.Table
	inodes *inode.Table
	imap   alloc.Allocator // free inodes
	bmap   alloc.Allocator // free blocks
	opts   options
}

func freeMap(n uint64) []byte {
	bits := make([]byte, n)
	for i := range bits {
		bits[i] = alloc.Free
	}
	return bits
}

// Create makes a fresh, zero-filled filesystem that will be saved to name.
// Nothing is written to the host until Save.
func Create(name string, opts ...Option) *FileSys {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fs := &FileSys{
		name:   name,
		d:      disk.NewMemDisk(common.NumBlocks),
		dir:    dir.MkTable(common.MaxFiles),
		inodes: inode.MkTable(common.MaxFiles),
		imap:   o.newAlloc(freeMap(common.MaxFiles)),
		bmap:   o.newAlloc(freeMap(common.NumBlocks)),
		opts:   o,
	}
	fs.pinReserved()
	util.DPrintf(1, "Create: %s\n", name)
	return fs
}

// Mount loads the image at name.
func Mount(name string, opts ...Option) (*FileSys, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := disk.NewMemDisk(common.NumBlocks)
	err := disk.LoadImage(name, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	fs, err := load(name, d, o)
	if err != nil {
		d.Close()
		return nil, err
	}
	util.DPrintf(1, "Mount: %s, %d bytes free\n", name, fs.bmap.NumFree()*common.BlockSize)
	return fs, nil
}

func load(name string, d disk.Disk, o options) (*FileSys, error) {
	dt, err := dir.Load(d)
	if err != nil {
		return nil, err
	}
	it, err := inode.Load(d)
	if err != nil {
		return nil, err
	}
	iblk, err := d.Read(common.InodeBitmapBlock)
	if err != nil {
		return nil, err
	}
	bblk, err := d.Read(common.BlockBitmapBlock)
	if err != nil {
		return nil, err
	}
	fs := &FileSys{
		name:   name,
		d:      d,
		dir:    dt,
		inodes: it,
		imap:   o.newAlloc(iblk[:common.MaxFiles]),
		bmap:   o.newAlloc(bblk[:common.NumBlocks]),
		opts:   o,
	}
	fs.pinReserved()
	return fs, nil
}

// pinReserved marks every metadata block used so the allocator can never
// hand one out.
func (fs *FileSys) pinReserved() {
	for bn := common.Bnum(0); addr.IsReserved(bn); bn++ {
		if fs.bmap.IsFree(bn) {
			util.DPrintf(1, "reserved block %d marked free; pinning\n", bn)
			fs.bmap.MarkUsed(bn)
		}
	}
}

func (fs *FileSys) mounted() error {
	if fs == nil || fs.d == nil {
		return common.ErrNotMounted
	}
	return nil
}

// Name is the host path the image is saved to.
func (fs *FileSys) Name() string {
	return fs.name
}

// flush encodes the in-memory metadata into its reserved blocks.
func (fs *FileSys) flush() error {
	err := fs.dir.Save(fs.d)
	if err != nil {
		return err
	}
	err = fs.inodes.Save(fs.d)
	if err != nil {
		return err
	}
	iblk := make(disk.Block, common.BlockSize)
	copy(iblk, fs.imap.Bytes())
	err = fs.d.Write(common.InodeBitmapBlock, iblk)
	if err != nil {
		return err
	}
	bblk := make(disk.Block, common.BlockSize)
	copy(bblk, fs.bmap.Bytes())
	return fs.d.Write(common.BlockBitmapBlock, bblk)
}

// Save writes the whole image to its host file.
func (fs *FileSys) Save() error {
	if err := fs.mounted(); err != nil {
		return err
	}
	err := fs.flush()
	if err != nil {
		return err
	}
	util.DPrintf(1, "Save: %s\n", fs.name)
	return disk.SaveImage(fs.name, fs.d)
}

// Unmount releases the image without saving it.
func (fs *FileSys) Unmount() error {
	if err := fs.mounted(); err != nil {
		return err
	}
	util.DPrintf(1, "Unmount: %s\n", fs.name)
	err := fs.d.Close()
	fs.d = nil
	fs.dir = nil
	fs.inodes = nil
	fs.imap = nil
	fs.bmap = nil
	return err
}

// FreeBytes is the space left for file data.
func (fs *FileSys) FreeBytes() (uint64, error) {
	if err := fs.mounted(); err != nil {
		return 0, err
	}
	return fs.bmap.NumFree() * common.BlockSize, nil
}
