package inode

import (
	"fmt"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/disk"
	"github.com/mit-pdos/go-mfs/util"
)

// Table is the in-memory inode table. A slot whose record could not be
// decoded is kept as corrupt (and its block left untouched on save) until it
// is reset.
type Table struct {
	inodes []*Inode
	bad    []error
}

func MkTable(n uint64) *Table {
	t := &Table{
		inodes: make([]*Inode, n),
		bad:    make([]error, n),
	}
	for i := range t.inodes {
		t.inodes[i] = &Inode{}
	}
	return t
}

// Load decodes MaxFiles inode records from d.
func Load(d disk.Disk) (*Table, error) {
	t := MkTable(common.MaxFiles)
	for i := uint64(0); i < common.MaxFiles; i++ {
		a := addr.InodeAddr(common.Inum(i))
		blk, err := d.Read(a.Blkno)
		if err != nil {
			return nil, err
		}
		ip, err := Decode(blk)
		if err != nil {
			util.DPrintf(1, "inode %d: %v\n", i, err)
			t.bad[i] = err
			continue
		}
		t.inodes[i] = ip
	}
	return t, nil
}

// Save encodes every decodable inode back into its block on d.
func (t *Table) Save(d disk.Disk) error {
	for i, ip := range t.inodes {
		if t.bad[i] != nil {
			continue
		}
		a := addr.InodeAddr(common.Inum(i))
		err := d.Write(a.Blkno, Encode(ip))
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) Len() uint64 {
	return uint64(len(t.inodes))
}

// Get returns inode inum, failing with ErrCorruptInode when inum is outside
// the table or its record is damaged.
func (t *Table) Get(inum common.Inum) (*Inode, error) {
	if uint64(inum) >= t.Len() {
		return nil, fmt.Errorf("inode index %d out of range: %w", inum, common.ErrCorruptInode)
	}
	if t.bad[inum] != nil {
		return nil, fmt.Errorf("inode %d: %w", inum, t.bad[inum])
	}
	return t.inodes[inum], nil
}

// Reset clears inode inum and returns it for reuse.
func (t *Table) Reset(inum common.Inum) *Inode {
	ip := &Inode{}
	t.inodes[inum] = ip
	t.bad[inum] = nil
	return ip
}

// Set installs ip as inode inum.
func (t *Table) Set(inum common.Inum, ip *Inode) {
	t.inodes[inum] = ip
	t.bad[inum] = nil
}
