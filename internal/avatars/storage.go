package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"task-tracker-backend/internal/logger"
)

// MaxSize is the largest accepted avatar upload.
const MaxSize = 5 << 20

var (
	ErrTooLarge        = errors.New("avatar too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// DiskStorage writes avatars under Dir and exposes them under URLPrefix.
type DiskStorage struct {
	Dir       string
	URLPrefix string
}

func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{Dir: dir, URLPrefix: "/static/avatars"}
}

// Save writes r to avatar_<userID><ext>, removes the user's avatars stored
// under other extensions and returns the public URL.
func (s *DiskStorage) Save(ctx context.Context, userID int, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := FileName(userID, contentType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp avatar: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, MaxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	if n > MaxSize {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	s.removeStale(ctx, userID, name)
	return strings.TrimRight(s.URLPrefix, "/") + "/" + name, nil
}

func (s *DiskStorage) removeStale(ctx context.Context, userID int, keep string) {
	matches, _ := filepath.Glob(filepath.Join(s.Dir, fmt.Sprintf("avatar_%d.*", userID)))
	for _, m := range matches {
		if filepath.Base(m) == keep {
			continue
		}
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			logger.Warn(ctx, "remove stale avatar", "file", filepath.Base(m), "error", err.Error())
		}
	}
}

// FileName is deterministic per user and image type.
func FileName(userID int, contentType string) (string, error) {
	ext, ok := extFor(contentType)
	if !ok {
		return "", ErrUnsupportedType
	}
	return fmt.Sprintf("avatar_%d%s", userID, ext), nil
}

// Supported reports whether contentType is an accepted raster image type.
func Supported(contentType string) bool {
	_, ok := extFor(contentType)
	return ok
}

// Only raster formats: SVG can carry script and is never accepted.
func extFor(contentType string) (string, bool) {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	}
	return "", false
}
