package headerstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MainFilename is the fixed name of the main chain's header file.
const MainFilename = "blockchain_headers"

// ForksDirName is the subdirectory holding fork files.
const ForksDirName = "forks"

// File wraps the single append-only, fsync'd file backing one chain's
// headers. It holds no consensus state (forkpoint, hash, parent); callers
// supply those to the Offset/SizeFromFileLength helpers.
type File struct {
	path string
}

// Open returns a File bound to path, without requiring the file to exist
// yet (Write creates it on demand).
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the underlying file path.
func (f *File) Path() string { return f.path }

// MainPath builds the main chain's header file path under headersDir.
func MainPath(headersDir string) string {
	return filepath.Join(headersDir, MainFilename)
}

// ForkPath builds a fork's header file path from its forkpoint and the hex
// ids of the header before the fork and the fork's first header. Leading
// zeros are stripped from both hex strings, matching the source's
// lstrip('0') filename convention.
func ForkPath(headersDir string, forkpoint int64, prevHashHex, firstHashHex string) string {
	basename := "fork2_" + itoa(forkpoint) + "_" +
		stripLeadingZeros(prevHashHex) + "_" + stripLeadingZeros(firstHashHex)
	return filepath.Join(headersDir, ForksDirName, basename)
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// FileSize returns the current file length, or 0 if the file doesn't exist.
func (f *File) FileSize() (int64, error) {
	st, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "headerstore: stat")
	}
	return st.Size(), nil
}

// EnsureExists creates an empty file at f.path if none exists yet, along
// with its parent directory.
func (f *File) EnsureExists() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "headerstore: mkdir")
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrap(err, "headerstore: create")
	}
	return file.Close()
}

// ReadAt reads exactly n bytes starting at offset. It reports an error if
// fewer than n bytes remain, matching read_header's "short file" failure.
func (f *File) ReadAt(offset int64, n int) ([]byte, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrap(err, "headerstore: open for read")
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := file.ReadAt(buf, offset)
	if read < n {
		return nil, errors.Errorf(
			"headerstore: expected to read %d bytes at offset %d, got %d", n, offset, read)
	}
	if err != nil {
		return nil, errors.Wrap(err, "headerstore: read")
	}
	return buf, nil
}

// ReadAll reads the entire file's contents.
func (f *File) ReadAll() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrap(err, "headerstore: read all")
	}
	return b, nil
}

// Write writes data at offset, durably. When truncate is true and offset
// does not equal the current file size, the file is first truncated to
// offset before writing, discarding anything beyond it (used to overwrite
// a forked tail or an entire reorg-swapped file). Every write is followed
// by flush + fsync before the file is closed.
func (f *File) Write(data []byte, offset int64, truncate bool) error {
	if err := f.EnsureExists(); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrap(err, "headerstore: open for write")
	}
	defer file.Close()

	if truncate {
		size, err := f.FileSize()
		if err != nil {
			return err
		}
		if offset != size {
			if err := file.Truncate(offset); err != nil {
				return errors.Wrap(err, "headerstore: truncate")
			}
		}
	}

	if _, err := file.WriteAt(data, offset); err != nil {
		return errors.Wrap(err, "headerstore: write")
	}
	if err := file.Sync(); err != nil {
		return errors.Wrap(err, "headerstore: fsync")
	}
	return nil
}

// Rename moves the file to newPath, overwriting any existing file there
// (matching the source's os.rename-or-remove-then-rename fallback).
func (f *File) Rename(newPath string) error {
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return errors.Wrap(err, "headerstore: mkdir for rename")
	}
	if err := os.Rename(f.path, newPath); err != nil {
		if os.IsExist(err) {
			if rmErr := os.Remove(newPath); rmErr != nil {
				return errors.Wrap(rmErr, "headerstore: remove stale destination")
			}
			if err := os.Rename(f.path, newPath); err != nil {
				return errors.Wrap(err, "headerstore: rename after remove")
			}
		} else {
			return errors.Wrap(err, "headerstore: rename")
		}
	}
	f.path = newPath
	return nil
}
