package mfs

import (
	"time"

	"github.com/mit-pdos/go-mfs/alloc"
)

type options struct {
	clock    func() time.Time
	newAlloc func(bits []byte) alloc.Allocator
}

// Option configures Create, Mount and NewSession.
type Option func(*options)

func defaultOptions() options {
	return options{
		clock: time.Now,
		newAlloc: func(bits []byte) alloc.Allocator {
			return alloc.MkBitmap(bits)
		},
	}
}

// WithClock sets the source of file creation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithAllocator sets the strategy used for both free maps. The function
// receives the map in its on-disk form and owns it from then on.
//
// The default is first-fit (alloc.MkBitmap).
func WithAllocator(newAlloc func(bits []byte) alloc.Allocator) Option {
	return func(o *options) {
		if newAlloc != nil {
			o.newAlloc = newAlloc
		}
	}
}
