// Package storage keeps uploaded post images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path prefix of stored images. References handed
// out by Save look like "images/<uuid>-<name>".
const URLPrefix = "images"

// ErrUnsupportedType is returned for uploads that are not png or jpeg.
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// AllowedType reports whether contentType may be stored.
func AllowedType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return allowedTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

// DiskStore writes images beneath a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory images are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save stores r under a collision-free name and returns its reference.
func (s *DiskStore) Save(name, contentType string, r io.Reader) (string, error) {
	if !AllowedType(contentType) {
		return "", ErrUnsupportedType
	}

	file := uuid.NewString() + "-" + sanitize(name)
	f, err := os.OpenFile(filepath.Join(s.dir, file), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return path.Join(URLPrefix, file), nil
}

// Remove deletes the image behind ref and reports whether a file was
// actually removed. References outside the store are ignored.
func (s *DiskStore) Remove(ref string) (bool, error) {
	file, ok := s.resolve(ref)
	if !ok {
		return false, nil
	}
	err := os.Remove(file)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove image: %w", err)
	}
	return true, nil
}

func (s *DiskStore) resolve(ref string) (string, bool) {
	ref = strings.TrimPrefix(filepath.ToSlash(ref), "/")
	rest, ok := strings.CutPrefix(ref, URLPrefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") || rest == "." || rest == ".." {
		return "", false
	}
	return filepath.Join(s.dir, rest), true
}

// sanitize keeps the base name of an upload and strips separators.
func sanitize(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// Accepts reports whether an upload of contentType would be stored.
func (s *DiskStore) Accepts(contentType string) bool {
	return AllowedType(contentType)
}
