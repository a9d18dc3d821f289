package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"checkcontrat-backend/internal/shared/storage/object"
	"checkcontrat-backend/internal/shared/util"
)

const (
	DefaultMaxBytes = 10 << 20
	tokenBytes      = 8
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// sniffed is what http.DetectContentType reports for each accepted extension.
var sniffed = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/zip",
}

// FileSource is anything that can provide an original filename and a byte stream.
type FileSource interface {
	Filename() string
	Open() (io.ReadCloser, error)
}

// MultipartSource adapts a multipart form file.
type MultipartSource struct {
	Header *multipart.FileHeader
}

func (m MultipartSource) Filename() string {
	if m.Header == nil {
		return ""
	}
	return m.Header.Filename
}

func (m MultipartSource) Open() (io.ReadCloser, error) {
	if m.Header == nil {
		return nil, ErrNoFile
	}
	return m.Header.Open()
}

// Upload describes a stored input file.
type Upload struct {
	FileName    string `json:"fileName"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

type Service struct {
	Store    object.KeySaver
	MaxBytes int64
	NewToken func() (string, error)
}

func NewService(store object.KeySaver, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{Store: store, MaxBytes: maxBytes}
}

// Save stores src in the input area as <userID>_<token><ext>.
func (s *Service) Save(ctx context.Context, userID string, src FileSource) (Upload, error) {
	if src == nil {
		return Upload{}, ErrNoFile
	}
	original := strings.TrimSpace(src.Filename())
	if original == "" {
		return Upload{}, ErrEmptyFilename
	}
	clean, err := util.SanitizeFileName(original)
	if err != nil {
		return Upload{}, ErrEmptyFilename
	}
	ext := strings.ToLower(filepath.Ext(clean))
	contentType, ok := contentTypes[ext]
	if !ok {
		return Upload{}, ErrUnsupportedType
	}

	rc, err := src.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes()+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes() {
		return Upload{}, ErrTooLarge
	}
	if len(data) == 0 || http.DetectContentType(data) != sniffed[ext] {
		return Upload{}, ErrUnsupportedType
	}

	token, err := s.token()
	if err != nil {
		return Upload{}, fmt.Errorf("upload token: %w", err)
	}
	name := userID + "_" + token + ext
	size, err := s.Store.SaveWithKey(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return Upload{}, fmt.Errorf("store upload: %w", err)
	}
	return Upload{FileName: name, SizeBytes: size, ContentType: contentType}, nil
}

func (s *Service) maxBytes() int64 {
	if s.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return s.MaxBytes
}

func (s *Service) token() (string, error) {
	if s.NewToken != nil {
		return s.NewToken()
	}
	return util.URLSafeToken(tokenBytes)
}
