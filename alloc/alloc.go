package alloc

import (
	"fmt"

	"github.com/mit-pdos/go-mfs/util"
)

// Slot states in a free map. Any non-zero byte reads as free.
const (
	Used byte = 0
	Free byte = 1
)

// Allocator hands out slot numbers from a one-byte-per-slot free map.
//
// FindFree only reports a candidate; the caller claims it with MarkUsed.
type Allocator interface {
	FindFree() (uint64, bool)
	MarkUsed(n uint64)
	MarkFree(n uint64)
	IsFree(n uint64) bool
	NumFree() uint64
	Len() uint64

	// Bytes returns the free map in its on-disk form.
	Bytes() []byte
}

// Bitmap allocates first-fit: the lowest free slot always wins.
type Bitmap struct {
	bits []byte
}

var _ Allocator = (*Bitmap)(nil)

// MkBitmap takes ownership of bits.
func MkBitmap(bits []byte) *Bitmap {
	return &Bitmap{bits: bits}
}

// MkFreeBitmap returns a bitmap of n slots, all free.
func MkFreeBitmap(n uint64) *Bitmap {
	bits := make([]byte, n)
	for i := range bits {
		bits[i] = Free
	}
	return MkBitmap(bits)
}

func (b *Bitmap) check(n uint64) {
	if n >= uint64(len(b.bits)) {
		panic(fmt.Errorf("slot %d out of range [0, %d)", n, len(b.bits)))
	}
}

func (b *Bitmap) FindFree() (uint64, bool) {
	return b.findFrom(0)
}

// findFrom scans upward from start, wrapping around once.
func (b *Bitmap) findFrom(start uint64) (uint64, bool) {
	n := uint64(len(b.bits))
	for i := uint64(0); i < n; i++ {
		num := (start + i) % n
		if b.bits[num] != Used {
			util.DPrintf(10, "findFree: start %d found %d\n", start, num)
			return num, true
		}
	}
	return 0, false
}

func (b *Bitmap) MarkUsed(n uint64) {
	b.check(n)
	b.bits[n] = Used
}

func (b *Bitmap) MarkFree(n uint64) {
	b.check(n)
	b.bits[n] = Free
}

func (b *Bitmap) IsFree(n uint64) bool {
	b.check(n)
	return b.bits[n] != Used
}

func (b *Bitmap) NumFree() uint64 {
	var cnt uint64
	for _, v := range b.bits {
		if v != Used {
			cnt++
		}
	}
	return cnt
}

func (b *Bitmap) Len() uint64 {
	return uint64(len(b.bits))
}

func (b *Bitmap) Bytes() []byte {
	return b.bits
}

// NextFit resumes scanning after the most recently claimed slot, wrapping
// around at the end of the map.
type NextFit struct {
	*Bitmap
	next uint64 // first number to try
}

var _ Allocator = (*NextFit)(nil)

func MkNextFit(bits []byte) *NextFit {
	return &NextFit{Bitmap: MkBitmap(bits)}
}

func (a *NextFit) FindFree() (uint64, bool) {
	return a.findFrom(a.next)
}

func (a *NextFit) MarkUsed(n uint64) {
	a.Bitmap.MarkUsed(n)
	a.next = n + 1
	if a.next >= a.Len() {
		a.next = 0
	}
}
