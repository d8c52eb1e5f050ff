// Package uploads stores user-submitted images on local disk.
//
// Files are renamed to a UUID plus their original extension so uploads can
// never collide or traverse paths. Saved files are served back under the
// configured public URL prefix (e.g. /uploads/<name>).
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload (5 MiB), matching the form
// parse limit in the handlers.
const MaxImageSize = 5 << 20

// ErrUnsupportedType is returned when the file extension is not an allowed
// image type.
var ErrUnsupportedType = errors.New("uploads: unsupported file type")

// ErrTooLarge is returned when the upload exceeds MaxImageSize.
var ErrTooLarge = errors.New("uploads: file too large")

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store saves and removes uploaded images under a single base directory.
type Store struct {
	dir       string // filesystem directory, e.g. "uploads"
	urlPrefix string // public prefix, e.g. "/uploads"
	allowIco  bool
	log       *zap.Logger
}

// NewStore creates the base directory if needed and returns a Store.
func NewStore(dir, urlPrefix string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("uploads: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}
	urlPrefix = "/" + strings.Trim(urlPrefix, "/")

	logger.Info("upload store ready",
		zap.String("dir", dir),
		zap.String("url_prefix", urlPrefix))

	return &Store{dir: dir, urlPrefix: urlPrefix, log: logger}, nil
}

// AllowIco additionally accepts .ico files. Only the logo store opts in;
// the favicon arrives through the site-settings form. Returns the store for
// chaining at construction.
func (s *Store) AllowIco() *Store {
	s.allowIco = true
	return s
}

// URLPrefix returns the public prefix saved paths are served under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Dir returns the filesystem directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded file to disk under a fresh UUID name and returns
// the public path ("/uploads/<uuid>.<ext>"). The caller is responsible for
// calling Remove if the surrounding DB write fails.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExts[ext] && !(s.allowIco && ext == ".ico") {
		return "", ErrUnsupportedType
	}
	if header.Size > MaxImageSize {
		return "", ErrTooLarge
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("uploads: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, MaxImageSize+1)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("uploads: write file: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Remove deletes a previously saved file given its public path. Unknown or
// already-deleted paths are not errors; callers use this for best-effort
// cleanup.
func (s *Store) Remove(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	name := path.Base(publicPath)
	// Base() strips any directory components, so a stored path can never
	// reach outside the upload dir.
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		s.log.Warn("upload remove failed",
			zap.String("path", publicPath),
			zap.Error(err))
		return err
	}
	return nil
}
