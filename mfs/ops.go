package mfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/dir"
	"github.com/mit-pdos/go-mfs/disk"
	"github.com/mit-pdos/go-mfs/inode"
	"github.com/mit-pdos/go-mfs/util"
)

// find returns the slot and entry named name with the given validity.
func (fs *FileSys) find(name string, valid bool) (uint64, *dir.Entry, error) {
	fn, err := common.MkFilename(name)
	if err != nil {
		return 0, nil, err
	}
	i, ok := fs.dir.Lookup(fn, valid)
	if !ok {
		return 0, nil, fmt.Errorf("%q: %w", name, common.ErrNotFound)
	}
	return i, fs.dir.Get(i), nil
}

// lookup returns the inode of the live file name.
func (fs *FileSys) lookup(name string) (*dir.Entry, *inode.Inode, error) {
	if err := fs.mounted(); err != nil {
		return nil, nil, err
	}
	_, e, err := fs.find(name, true)
	if err != nil {
		return nil, nil, err
	}
	ip, err := fs.inodes.Get(e.Inum)
	if err != nil {
		return nil, nil, fmt.Errorf("%q: %w", name, err)
	}
	err = ip.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("%q: inode %d: %w", name, e.Inum, err)
	}
	return e, ip, nil
}

// Put copies the host file at path into the filesystem under its base name.
func (fs *FileSys) Put(path string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("put %q: %w", path, common.ErrInvalidName)
	}
	name, err := common.MkFilename(base)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	if _, ok := fs.dir.Lookup(name, true); ok {
		return fmt.Errorf("put %s: %w", name, common.ErrDuplicateName)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("put %s: %w: %w", name, common.ErrNotFound, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("put %s: %w: %w", name, common.ErrNotFound, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("put %s: not a regular file: %w", path, common.ErrNotFound)
	}
	util.DPrintf(1, "put: reading %d bytes from %s\n", fi.Size(), path)
	return fs.put(name, f, uint64(fi.Size()))
}

// PutReader stores size bytes from r as the file name.
func (fs *FileSys) PutReader(name string, r io.Reader, size uint64) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	fn, err := common.MkFilename(name)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	if _, ok := fs.dir.Lookup(fn, true); ok {
		return fmt.Errorf("put %s: %w", fn, common.ErrDuplicateName)
	}
	return fs.put(fn, r, size)
}

func (fs *FileSys) put(name common.Filename, r io.Reader, size uint64) error {
	if size > common.MaxFileSize {
		return fmt.Errorf("put %s: %d bytes: %w", name, size, common.ErrTooLarge)
	}
	if size > fs.bmap.NumFree()*common.BlockSize {
		return fmt.Errorf("put %s: %d bytes: %w", name, size, common.ErrInsufficientSpace)
	}
	slot, inum, err := fs.chooseSlot(name)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}

	// Read everything before touching any block so a failed read leaves the
	// image exactly as it was.
	chunks, err := readChunks(r, size)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}

	ip := &inode.Inode{
		Name:    name,
		Size:    size,
		Created: fs.opts.clock().Unix(),
		Blocks:  make([]common.Bnum, 0, len(chunks)),
	}
	for _, blk := range chunks {
		bn, ok := fs.bmap.FindFree()
		if !ok {
			fs.release(ip.Direct())
			return fmt.Errorf("put %s: %w", name, common.ErrInsufficientSpace)
		}
		fs.bmap.MarkUsed(bn)
		ip.Append(bn)
		err = fs.d.Write(bn, blk)
		if err != nil {
			fs.release(ip.Direct())
			return fmt.Errorf("put %s: block %d: %w", name, bn, err)
		}
		util.DPrintf(10, "put %s: block %d\n", name, bn)
	}

	fs.inodes.Set(inum, ip)
	fs.imap.MarkUsed(uint64(inum))
	*fs.dir.Get(slot) = dir.Entry{Name: name, Inum: inum, Valid: true}
	util.DPrintf(1, "put %s: %d bytes, slot %d, inode %d, %d blocks\n",
		name, size, slot, inum, ip.UsedBlocks)
	return nil
}

// chooseSlot picks the directory slot and inode for a new file. A deleted
// entry of the same name is reused, together with its old inode when that
// inode is still free.
func (fs *FileSys) chooseSlot(name common.Filename) (uint64, common.Inum, error) {
	slot, ok := fs.dir.Lookup(name, false)
	if ok {
		inum := fs.dir.Get(slot).Inum
		if uint64(inum) < fs.imap.Len() && fs.imap.IsFree(uint64(inum)) {
			util.DPrintf(5, "chooseSlot %s: reuse slot %d inode %d\n", name, slot, inum)
			return slot, inum, nil
		}
	} else {
		slot, ok = fs.dir.FindFree()
		if !ok {
			return 0, 0, common.ErrDirectoryFull
		}
	}
	n, ok := fs.imap.FindFree()
	if !ok {
		return 0, 0, common.ErrInodeTableFull
	}
	util.DPrintf(5, "chooseSlot %s: slot %d inode %d\n", name, slot, n)
	return slot, common.Inum(n), nil
}

func readChunks(r io.Reader, size uint64) ([]disk.Block, error) {
	n := inode.NBlocks(size)
	chunks := make([]disk.Block, 0, n)
	remaining := size
	for i := uint64(0); i < n; i++ {
		blk := make(disk.Block, common.BlockSize)
		l := util.Min(common.BlockSize, remaining)
		_, err := io.ReadFull(r, blk[:l])
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w: %w", i, common.ErrReadError, err)
		}
		chunks = append(chunks, blk)
		remaining -= l
	}
	return chunks, nil
}

func (fs *FileSys) release(blocks []common.Bnum) {
	for _, bn := range blocks {
		fs.bmap.MarkFree(bn)
	}
}

// Get copies the file name out to the host file dest.
func (fs *FileSys) Get(name string, dest string) error {
	_, ip, err := fs.lookup(name)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("get %s: %w: %w", name, common.ErrWriteError, err)
	}
	util.DPrintf(1, "get: writing %d bytes to %s\n", ip.Size, dest)
	err = fs.copyOut(ip, f)
	cerr := f.Close()
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	if cerr != nil {
		return fmt.Errorf("get %s: %w: %w", name, common.ErrWriteError, cerr)
	}
	return nil
}

// GetWriter writes the content of file name to w.
func (fs *FileSys) GetWriter(name string, w io.Writer) error {
	_, ip, err := fs.lookup(name)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	err = fs.copyOut(ip, w)
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	return nil
}

// Cat writes the content of file name to w as text.
func (fs *FileSys) Cat(name string, w io.Writer) error {
	_, ip, err := fs.lookup(name)
	if err != nil {
		return fmt.Errorf("cat: %w", err)
	}
	err = fs.copyOut(ip, w)
	if err != nil {
		return fmt.Errorf("cat %s: %w", name, err)
	}
	return nil
}

// copyOut writes exactly ip.Size bytes; the unused tail of the last block is
// never copied.
func (fs *FileSys) copyOut(ip *inode.Inode, w io.Writer) error {
	buf := make(disk.Block, common.BlockSize)
	for i, bn := range ip.Direct() {
		err := fs.d.ReadTo(bn, buf)
		if err != nil {
			return err
		}
		_, err = w.Write(buf[:ip.ChunkLen(uint64(i))])
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrWriteError, err)
		}
	}
	return nil
}

// Delete invalidates the entry for name and frees its inode and blocks. The
// content stays in place until the blocks are reused.
func (fs *FileSys) Delete(name string) error {
	e, ip, err := fs.lookup(name)
	if err != nil {
		return fmt.Errorf("del: %w", err)
	}
	e.Valid = false
	fs.imap.MarkFree(uint64(e.Inum))
	fs.release(ip.Direct())
	util.DPrintf(1, "del %s: inode %d, %d blocks freed\n", name, e.Inum, ip.UsedBlocks)
	return nil
}

// Undelete restores a deleted file, provided neither its inode nor any of its
// blocks has been reused since. Either the whole file comes back or nothing
// changes.
func (fs *FileSys) Undelete(name string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	_, e, err := fs.find(name, false)
	if err != nil {
		return fmt.Errorf("undel: %w", err)
	}
	if _, ok := fs.dir.Lookup(e.Name, true); ok {
		return fmt.Errorf("undel %s: %w", name, common.ErrDuplicateName)
	}
	ip, err := fs.inodes.Get(e.Inum)
	if err != nil {
		return fmt.Errorf("undel %s: %w", name, err)
	}
	if ip.Name != e.Name || !fs.imap.IsFree(uint64(e.Inum)) {
		return fmt.Errorf("undel %s: inode %d: %w", name, e.Inum, common.ErrInodeReassigned)
	}
	err = ip.Validate()
	if err != nil {
		return fmt.Errorf("undel %s: inode %d: %w", name, e.Inum, err)
	}
	for _, bn := range ip.Direct() {
		if !fs.bmap.IsFree(bn) {
			return fmt.Errorf("undel %s: block %d: %w", name, bn, common.ErrBlocksOverwritten)
		}
	}

	e.Valid = true
	fs.imap.MarkUsed(uint64(e.Inum))
	for _, bn := range ip.Direct() {
		fs.bmap.MarkUsed(bn)
	}
	util.DPrintf(1, "undel %s: inode %d, %d blocks\n", name, e.Inum, ip.UsedBlocks)
	return nil
}

// SetAttribute sets or clears one attribute flag of file name.
func (fs *FileSys) SetAttribute(name string, flag common.Attr, enabled bool) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	if flag != common.AttrReadOnly && flag != common.AttrHidden {
		return fmt.Errorf("attrib %s: %#x: %w", name, uint64(flag), common.ErrInvalidAttribute)
	}
	_, ip, err := fs.lookup(name)
	if err != nil {
		return fmt.Errorf("attrib: %w", err)
	}
	ip.Attr = ip.Attr.Set(flag, enabled)
	return nil
}

// FileInfo describes one listed file.
type FileInfo struct {
	Name    common.Filename
	Size    uint64
	Attr    common.Attr
	Created time.Time
}

// String formats the listing line: hidden flag, read-only flag, size,
// creation time and name.
func (fi FileInfo) String() string {
	h, r := '-', '-'
	if fi.Attr.Has(common.AttrHidden) {
		h = 'H'
	}
	if fi.Attr.Has(common.AttrReadOnly) {
		r = 'R'
	}
	return fmt.Sprintf("%c%c %8d %s %s", h, r, fi.Size, fi.Created.Format(time.ANSIC), fi.Name)
}

// List describes the live files in directory order. Hidden files are left
// out unless showHidden is set. Entries whose inode cannot be read are
// skipped and reported in the returned error.
func (fs *FileSys) List(showHidden bool) ([]FileInfo, error) {
	if err := fs.mounted(); err != nil {
		return nil, err
	}
	var infos []FileInfo
	var errs []error
	fs.dir.Valid(func(i uint64, e *dir.Entry) {
		ip, err := fs.inodes.Get(e.Inum)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", e.Name, err))
			return
		}
		if ip.Attr.Has(common.AttrHidden) && !showHidden {
			return
		}
		infos = append(infos, FileInfo{
			Name:    e.Name,
			Size:    ip.Size,
			Attr:    ip.Attr,
			Created: time.Unix(ip.Created, 0),
		})
	})
	return infos, errors.Join(errs...)
}
