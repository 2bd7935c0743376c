package common

import "errors"

var (
	ErrNotMounted        = errors.New("no file system is currently open")
	ErrAlreadyMounted    = errors.New("another file system is already open")
	ErrNameTooLong       = errors.New("file name too long")
	ErrInvalidName       = errors.New("invalid file name")
	ErrInvalidAttribute  = errors.New("unknown attribute")
	ErrNotFound          = errors.New("file not found")
	ErrDuplicateName     = errors.New("another file with the same name already exists")
	ErrTooLarge          = errors.New("file size is greater than maximum file size")
	ErrInsufficientSpace = errors.New("not enough disk space")
	ErrDirectoryFull     = errors.New("maximum amount of files has been reached")
	ErrInodeTableFull    = errors.New("maximum amount of inodes has been reached")
	ErrSizeMismatch      = errors.New("image is not correct size")
	ErrReadError         = errors.New("read error")
	ErrWriteError        = errors.New("write error")
	ErrCorruptInode      = errors.New("corrupt inode")
	ErrInodeReassigned   = errors.New("inode has been claimed by another file")
	ErrBlocksOverwritten = errors.New("data blocks have been overwritten by another file")
)
