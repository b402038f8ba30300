package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrExists is returned by CreateAtomic when the destination is already present.
var ErrExists = errors.New("destination already exists")

// WriteFileAtomic writes data next to path in a temporary file, flushes it to disk
// and renames it into place. Readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	return WriteFileAtomicIf(path, data, perm, nil)
}

// WriteFileAtomicIf is WriteFileAtomic with a precondition checked after the
// new content is on disk and immediately before the rename. A non-nil error
// from check aborts the write and is returned as is.
func WriteFileAtomicIf(path string, data []byte, perm fs.FileMode, check func() error) error {
	tmpPath, err := writeTemp(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return err
	}

	if check != nil {
		if err := check(); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// CreateAtomic streams r into a new file at path. The file only becomes visible
// once fully written, and an existing file is never replaced (ErrExists).
func CreateAtomic(path string, r io.Reader, perm fs.FileMode) error {
	tmpPath, err := writeTemp(path, perm, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	// link(2) fails when the target exists, which rename(2) would silently overwrite.
	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("link into place: %w", err)
	}
	return nil
}

// WriteJSONAtomic encodes v as indented JSON and writes it with WriteFileAtomic.
func WriteJSONAtomic(path string, v any) error {
	return WriteJSONAtomicIf(path, v, nil)
}

// WriteJSONAtomicIf is WriteJSONAtomic guarded by check, see WriteFileAtomicIf.
func WriteJSONAtomicIf(path string, v any, check func() error) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	return WriteFileAtomicIf(path, data, 0o644, check)
}

// ReadFileIfExists returns the file content, or found=false when it does not exist.
func ReadFileIfExists(path string) (data []byte, found bool, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func writeTemp(path string, perm fs.FileMode, fill func(io.Writer) error) (tmpPath string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath = tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = fill(tmp); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmpPath, nil
}
