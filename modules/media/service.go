// Package media stores uploaded product images and serves them back.
package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/gabriel-vasile/mimetype"
	nanoid "github.com/jaevor/go-nanoid"
)

// PublicPath is the route prefix uploads are served under.
const PublicPath = "/public/uploads/"

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	// ErrUploadNotFound is returned when no upload has the requested name.
	ErrUploadNotFound = fmt.Errorf("%w: the upload cannot be found", apperr.ErrNotFound)
	// ErrNoFile is returned when an upload carries no data.
	ErrNoFile = fmt.Errorf("%w: no image in the request", apperr.ErrMissingAsset)
	// ErrUnsupportedType is returned for anything but PNG and JPEG images.
	ErrUnsupportedType = fmt.Errorf("%w: invalid image type", apperr.ErrInvalidAsset)
)

// extensions maps accepted declared content types to stored extensions.
var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Upload is a stored image.
type Upload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Service validates and stores uploaded images.
type Service struct {
	store   ObjectStore
	maxSize int64
	newID   func() string
}

// NewService creates a new Service. maxSize <= 0 disables the size check.
func NewService(store ObjectStore, maxSize int64) (*Service, error) {
	gen, err := nanoid.CustomASCII(idAlphabet, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &Service{store: store, maxSize: maxSize, newID: gen}, nil
}

// Save checks the declared and sniffed type of data and stores it under a
// fresh unique name.
func (s *Service) Save(ctx context.Context, filename, declaredType string, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", apperr.ErrInvalidAsset, s.maxSize)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0]))
	ext, ok := extensions[declared]
	if !ok {
		return nil, ErrUnsupportedType
	}
	sniffed := mimetype.Detect(data)
	if !sniffed.Is("image/png") && !sniffed.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedType, sniffed.String())
	}

	name := fmt.Sprintf("%s-%s.%s", baseName(filename), s.newID(), ext)
	contentType := sniffed.String()
	headers := map[string]string{
		"Content-Type":  contentType,
		"Original-Name": filename,
	}
	if err := s.store.Put(ctx, name, data, headers); err != nil {
		return nil, err
	}
	return &Upload{Name: name, ContentType: contentType, Size: len(data)}, nil
}

// Open returns the content and content type of a stored upload.
func (s *Service) Open(name string) ([]byte, string, error) {
	if !validName(name) {
		return nil, "", ErrUploadNotFound
	}
	data, headers, err := s.store.Get(name)
	if err != nil {
		return nil, "", err
	}
	contentType := headers["Content-Type"]
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return data, contentType, nil
}

// Delete removes a stored upload.
func (s *Service) Delete(name string) error {
	if !validName(name) {
		return ErrUploadNotFound
	}
	return s.store.Delete(name)
}

// URL returns the public address of an upload.
func URL(baseURL, name string) string {
	return strings.TrimSuffix(baseURL, "/") + PublicPath + name
}

// NameFromURL returns the upload name of a URL produced by URL, or "" when
// the URL does not point at an upload.
func NameFromURL(url string) string {
	i := strings.LastIndex(url, PublicPath)
	if i < 0 {
		return ""
	}
	name := url[i+len(PublicPath):]
	if !validName(name) {
		return ""
	}
	return name
}

// baseName strips directories and the extension and replaces whitespace
// with dashes.
func baseName(filename string) string {
	base := filepath.Base(filepath.Clean(strings.ReplaceAll(filename, "\\", "/")))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Join(strings.Fields(base), "-")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, base)
	if base == "" {
		return "image"
	}
	return base
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/\\") && !strings.Contains(name, "..")
}
