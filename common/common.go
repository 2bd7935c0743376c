package common

const (
	BlockSize     uint64 = 8192
	NumBlocks     uint64 = 4226
	MaxFiles      uint64 = 125
	NumDataBlocks uint64 = 1250 // direct blocks per inode
	MaxFilename   uint64 = 32

	MaxFileSize = NumDataBlocks * BlockSize
	ImageSize   = NumBlocks * BlockSize
)

// Fixed layout of an image: the directory, the two bitmaps, one block per
// inode, then data.
const (
	DirBlock         Bnum = 0
	InodeBitmapBlock Bnum = 1
	BlockBitmapBlock Bnum = 2
	InodeStart       Bnum = 3
	DataStart        Bnum = InodeStart + Bnum(MaxFiles)
)

type Inum uint64
type Bnum = uint64

// Attr is the inode attribute bit field.
type Attr uint64

const (
	AttrReadOnly Attr = 1 << 0
	AttrHidden   Attr = 1 << 1

	attrMask = AttrReadOnly | AttrHidden
)

func (a Attr) Has(f Attr) bool {
	return a&f != 0
}

func (a Attr) Set(f Attr, enabled bool) Attr {
	if enabled {
		return (a | f) & attrMask
	}
	return a &^ f & attrMask
}
