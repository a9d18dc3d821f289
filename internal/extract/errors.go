package extract

import "errors"

var (
	// ErrFileNotFound is returned when the filename does not resolve in the input area.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFileType is returned for extensions other than .pdf and .docx.
	ErrUnsupportedFileType = errors.New("unsupported file type: must be PDF or DOCX")
)
