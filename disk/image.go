package disk

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/util"
)

func preadFull(fd int, buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := unix.Pread(fd, buf, off)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
		buf = buf[n:]
		off += int64(n)
	}
	return nil
}

func pwriteFull(fd int, buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := unix.Pwrite(fd, buf, off)
		if err != nil {
			return err
		}
		buf = buf[n:]
		off += int64(n)
	}
	return nil
}

// LoadImage fills d with the contents of the image file at path, block by
// block. The file must be exactly d's size in bytes.
func LoadImage(path string, d Disk) error {
	numBlocks, err := d.Size()
	if err != nil {
		return err
	}
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", path, common.ErrReadError, err)
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		return fmt.Errorf("stat %s: %w: %w", path, common.ErrReadError, err)
	}
	if uint64(stat.Size) != numBlocks*common.BlockSize {
		return fmt.Errorf("%s is %d bytes, want %d: %w",
			path, stat.Size, numBlocks*common.BlockSize, common.ErrSizeMismatch)
	}

	util.DPrintf(1, "LoadImage: reading %d bytes from %s\n", stat.Size, path)
	buf := make(Block, common.BlockSize)
	for a := uint64(0); a < numBlocks; a++ {
		err = preadFull(fd, buf, int64(addr.MkAddr(a, 0).Flatid()))
		if err != nil {
			return fmt.Errorf("read %s block %d: %w: %w", path, a, common.ErrReadError, err)
		}
		err = d.Write(a, buf)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveImage writes every block of d to the file at path, creating or
// truncating it. Each block lands at its own offset; an interrupted save
// leaves a partial image behind.
func SaveImage(path string, d Disk) error {
	numBlocks, err := d.Size()
	if err != nil {
		return err
	}
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", path, common.ErrWriteError, err)
	}

	util.DPrintf(1, "SaveImage: writing %d bytes to %s\n", numBlocks*common.BlockSize, path)
	buf := make(Block, common.BlockSize)
	for a := uint64(0); a < numBlocks; a++ {
		err = d.ReadTo(a, buf)
		if err != nil {
			unix.Close(fd)
			return err
		}
		err = pwriteFull(fd, buf, int64(addr.MkAddr(a, 0).Flatid()))
		if err != nil {
			unix.Close(fd)
			return fmt.Errorf("write %s block %d: %w: %w", path, a, common.ErrWriteError, err)
		}
	}
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier.
	err = unix.Fsync(fd)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("sync %s: %w: %w", path, common.ErrWriteError, err)
	}
	err = unix.Close(fd)
	if err != nil {
		return fmt.Errorf("close %s: %w: %w", path, common.ErrWriteError, err)
	}
	return nil
}
