package util

import "errors"

var (
	ErrInvalidPageId    = errors.New("invalid page id")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidPoolSize  = errors.New("invalid pool size")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrPageOutOfBounds  = errors.New("page out of bounds")
	ErrOutBoundOfFrame  = errors.New("frame idx out of bound")
	ErrNoFreeFrame      = errors.New("no free frames")
	ErrPagePinned       = errors.New("page is pinned")
	ErrPageNotFound     = errors.New("page not found")
	ErrClosed           = errors.New("already closed")
	ErrUnknownPolicy    = errors.New("unknown replacement policy")
)
