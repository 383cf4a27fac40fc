package admin

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadsPrefix is the URL path uploaded photos are served under.
const UploadsPrefix = "/uploads/"

var allowedPhotoExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PhotoStorage keeps uploaded product photos in a local directory.
type PhotoStorage struct {
	dir string
}

func NewPhotoStorage(dir string) *PhotoStorage {
	return &PhotoStorage{dir: dir}
}

func (s *PhotoStorage) Dir() string {
	return s.dir
}

// Save writes the upload under a random name and returns its public path.
func (s *PhotoStorage) Save(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExt[ext] {
		return "", fmt.Errorf("unsupported photo type %q", ext)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write photo file: %w", err)
	}
	return UploadsPrefix + name, nil
}

// Remove deletes a previously saved photo. References that are not
// local uploads are ignored.
func (s *PhotoStorage) Remove(ref string) error {
	if !strings.HasPrefix(ref, UploadsPrefix) {
		return nil
	}
	name := path.Base(ref)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
