// Package dir holds the directory table: a fixed array of name to inode
// bindings packed into the directory block.
package dir

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-mfs/addr"
	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/disk"
)

// On-disk size of a directory entry.
const ENTRYSZ = common.MaxFilename + 4 + 4

// Entry binds a name to an inode. An invalid entry is either unused (empty
// name) or a deleted file that may still be recovered.
type Entry struct {
	Name  common.Filename
	Inum  common.Inum
	Valid bool
}

func (e *Entry) unused() bool {
	return !e.Valid && e.Name == ""
}

func encodeEntry(e *Entry) []byte {
	enc := marshal.NewEnc(ENTRYSZ - common.MaxFilename)
	enc.PutInt32(uint32(e.Inum))
	var valid uint32
	if e.Valid {
		valid = 1
	}
	enc.PutInt32(valid)
	return append(e.Name.Encode(), enc.Finish()...)
}

func decodeEntry(b []byte) Entry {
	dec := marshal.NewDec(b[common.MaxFilename:ENTRYSZ])
	e := Entry{Name: common.DecodeFilename(b[:common.MaxFilename])}
	e.Inum = common.Inum(dec.GetInt32())
	e.Valid = dec.GetInt32() != 0
	return e
}

// Table is the in-memory directory.
type Table struct {
	entries []Entry
}

func MkTable(n uint64) *Table {
	return &Table{entries: make([]Entry, n)}
}

// Load decodes MaxFiles entries from the directory block of d.
func Load(d disk.Disk) (*Table, error) {
	blk, err := d.Read(common.DirBlock)
	if err != nil {
		return nil, err
	}
	t := MkTable(common.MaxFiles)
	for i := range t.entries {
		a := addr.DirEntryAddr(uint64(i), ENTRYSZ)
		t.entries[i] = decodeEntry(blk[a.Off : a.Off+ENTRYSZ])
	}
	return t, nil
}

// Save encodes the table into the directory block of d.
func (t *Table) Save(d disk.Disk) error {
	blk := make(disk.Block, common.BlockSize)
	for i := range t.entries {
		a := addr.DirEntryAddr(uint64(i), ENTRYSZ)
		copy(blk[a.Off:a.Off+ENTRYSZ], encodeEntry(&t.entries[i]))
	}
	return d.Write(common.DirBlock, blk)
}

func (t *Table) Len() uint64 {
	return uint64(len(t.entries))
}

// Get returns slot i for in-place update.
func (t *Table) Get(i uint64) *Entry {
	return &t.entries[i]
}

// Lookup finds the first entry named name whose validity equals valid.
func (t *Table) Lookup(name common.Filename, valid bool) (uint64, bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Valid == valid && e.Name == name {
			return uint64(i), true
		}
	}
	return 0, false
}

// FindFree returns an invalid slot, preferring never-used slots so deleted
// files stay recoverable as long as possible.
func (t *Table) FindFree() (uint64, bool) {
	deleted, found := uint64(0), false
	for i := range t.entries {
		e := &t.entries[i]
		if e.unused() {
			return uint64(i), true
		}
		if !e.Valid && !found {
			deleted, found = uint64(i), true
		}
	}
	return deleted, found
}

// Valid calls f on each valid entry in table order.
func (t *Table) Valid(f func(i uint64, e *Entry)) {
	for i := range t.entries {
		if t.entries[i].Valid {
			f(uint64(i), &t.entries[i])
		}
	}
}
