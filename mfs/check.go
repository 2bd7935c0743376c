package mfs

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/dir"
)

// Check verifies the structural invariants of the mounted image and returns
// the first violation found. It never modifies anything.
//
//   - reserved blocks are marked used;
//   - each valid entry names a used inode carrying the same name, and no
//     inode is shared by two entries or two entries share a name;
//   - each live inode's size matches its block count and its blocks are
//     marked used and owned by no other live inode;
//   - no inode or data block is marked used without an owner.
func (fs *FileSys) Check() error {
	if err := fs.mounted(); err != nil {
		return err
	}
	for bn := common.Bnum(0); addr.IsReserved(bn); bn++ {
		if fs.bmap.IsFree(bn) {
			return fmt.Errorf("reserved block %d marked free", bn)
		}
	}

	inums := roaring.New()
	blocks := roaring.New()
	names := make(map[common.Filename]uint64)
	var err error
	fs.dir.Valid(func(i uint64, e *dir.Entry) {
		if err != nil {
			return
		}
		err = fs.checkEntry(i, e, names, inums, blocks)
	})
	if err != nil {
		return err
	}

	for n := uint64(0); n < fs.imap.Len(); n++ {
		if !fs.imap.IsFree(n) && !inums.Contains(uint32(n)) {
			return fmt.Errorf("inode %d marked used but unreferenced", n)
		}
	}
	for bn := uint64(common.DataStart); bn < fs.bmap.Len(); bn++ {
		if !fs.bmap.IsFree(bn) && !blocks.Contains(uint32(bn)) {
			return fmt.Errorf("block %d marked used but unreferenced", bn)
		}
	}
	return nil
}

func (fs *FileSys) checkEntry(i uint64, e *dir.Entry, names map[common.Filename]uint64,
	inums *roaring.Bitmap, blocks *roaring.Bitmap) error {
	if j, ok := names[e.Name]; ok {
		return fmt.Errorf("entries %d and %d are both named %q", j, i, e.Name)
	}
	names[e.Name] = i

	ip, err := fs.inodes.Get(e.Inum)
	if err != nil {
		return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
	}
	if !inums.CheckedAdd(uint32(e.Inum)) {
		return fmt.Errorf("entry %d (%s): inode %d shared: %w", i, e.Name, e.Inum, common.ErrCorruptInode)
	}
	if fs.imap.IsFree(uint64(e.Inum)) {
		return fmt.Errorf("entry %d (%s): inode %d marked free: %w", i, e.Name, e.Inum, common.ErrCorruptInode)
	}
	if ip.Name != e.Name {
		return fmt.Errorf("entry %d (%s): inode %d named %q: %w", i, e.Name, e.Inum, ip.Name, common.ErrCorruptInode)
	}
	err = ip.Validate()
	if err != nil {
		return fmt.Errorf("entry %d (%s): inode %d: %w", i, e.Name, e.Inum, err)
	}
	for _, bn := range ip.Direct() {
		if fs.bmap.IsFree(bn) {
			return fmt.Errorf("entry %d (%s): block %d marked free: %w", i, e.Name, bn, common.ErrCorruptInode)
		}
		if !blocks.CheckedAdd(uint32(bn)) {
			return fmt.Errorf("entry %d (%s): block %d shared: %w", i, e.Name, bn, common.ErrCorruptInode)
		}
	}
	return nil
}
