package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

func SaveFile(f io.Reader, path string) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0770)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, f)
	if err != nil {
		return err
	}
	return nil
}

// DeleteFile removes path. A file that is already gone is not an error.
func DeleteFile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TempPath returns a fresh path under dir shaped like <prefix>-<unixnano>-<8 hex chars><ext>.
// Nothing is created on disk.
func TempPath(dir, prefix, ext string) string {
	name := fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixNano(), uuid.NewString()[:8], ext)
	return filepath.Join(dir, name)
}
