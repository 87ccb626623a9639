package catalog

import "errors"

var (
	ErrCorruptPAK     = errors.New("corrupt PAK file")
	ErrUnsupportedPAK = errors.New("unsupported PAK version")
)
