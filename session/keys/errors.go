package keys

import "errors"

var (
	ErrKeyIsUnreadable   = errors.New("the stored encryption key is unreadable")
	ErrCacheSizeTooSmall = errors.New("the key cache size must be greater than 0")
)
