package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxFileSize is the upload cap per file.
const MaxFileSize = 5 << 20 // 5 MB

var (
	ErrTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidType = errors.New("file is not an image")
)

// Store writes uploaded images to local disk, partitioned by purpose:
// profile pictures at the root, post images under posts/. It returns the
// stored filename only; callers persist that reference on the owning entity
// and serving happens through the static mount.
type Store struct {
	root string
}

// NewStore creates the upload directories if they do not exist
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// SaveProfilePicture stores an avatar upload and returns its filename
func (s *Store) SaveProfilePicture(fh *multipart.FileHeader) (string, error) {
	return s.save(s.root, fh)
}

// SavePostImage stores a post image upload and returns its filename
func (s *Store) SavePostImage(fh *multipart.FileHeader) (string, error) {
	return s.save(filepath.Join(s.root, "posts"), fh)
}

func (s *Store) save(dir string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Sniff the real content type rather than trusting the part header.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrInvalidType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}
