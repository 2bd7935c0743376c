package mfs

import (
	"io"

	"github.com/mit-pdos/go-mfs/common"
)

// Session holds at most one mounted image and forwards file operations to
// it. Operations fail with ErrNotMounted while nothing is mounted.
type Session struct {
	fs   *FileSys
	opts []Option
}

func NewSession(opts ...Option) *Session {
	return &Session{opts: opts}
}

func (s *Session) Mounted() bool {
	return s.fs != nil
}

// FS returns the mounted filesystem, or nil.
func (s *Session) FS() *FileSys {
	return s.fs
}

func (s *Session) current() (*FileSys, error) {
	if s.fs == nil {
		return nil, common.ErrNotMounted
	}
	return s.fs, nil
}

// CreateImage mounts a fresh empty image that Save will write to name.
func (s *Session) CreateImage(name string) error {
	if s.fs != nil {
		return common.ErrAlreadyMounted
	}
	s.fs = Create(name, s.opts...)
	return nil
}

func (s *Session) Mount(name string) error {
	if s.fs != nil {
		return common.ErrAlreadyMounted
	}
	fs, err := Mount(name, s.opts...)
	if err != nil {
		return err
	}
	s.fs = fs
	return nil
}

// Unmount drops the mounted image without saving it.
func (s *Session) Unmount() error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	s.fs = nil
	return fs.Unmount()
}

func (s *Session) Save() error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Save()
}

func (s *Session) Put(path string) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Put(path)
}

func (s *Session) Get(name string, dest string) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Get(name, dest)
}

func (s *Session) Delete(name string) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Delete(name)
}

func (s *Session) Undelete(name string) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Undelete(name)
}

func (s *Session) List(showHidden bool) ([]FileInfo, error) {
	fs, err := s.current()
	if err != nil {
		return nil, err
	}
	return fs.List(showHidden)
}

func (s *Session) FreeBytes() (uint64, error) {
	fs, err := s.current()
	if err != nil {
		return 0, err
	}
	return fs.FreeBytes()
}

func (s *Session) SetAttribute(name string, flag common.Attr, enabled bool) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.SetAttribute(name, flag, enabled)
}

func (s *Session) Cat(name string, w io.Writer) error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Cat(name, w)
}

func (s *Session) Check() error {
	fs, err := s.current()
	if err != nil {
		return err
	}
	return fs.Check()
}
