package uploads

import "errors"

var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFilename   = errors.New("empty filename")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)
