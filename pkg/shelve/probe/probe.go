// Package probe reads file metadata and enumerates directories for shelve.
// All access goes through an afero.Fs so callers can substitute an
// in-memory filesystem.
package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/spf13/afero"
)

// ErrDirectoryNotFound is returned when the directory to enumerate does not exist.
var ErrDirectoryNotFound = errors.New("directory not found")

// ErrNotDirectory is returned when the path to enumerate is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// ListFiles returns the direct children of dir that are regular files.
// Symlinks are followed and kept when they point at a regular file; dangling
// links, subdirectories and other special entries are skipped.
func ListFiles(fsys afero.Fs, dir string) ([]types.FileRecord, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	records := make([]types.FileRecord, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			if info, err = fsys.Stat(path); err != nil {
				continue
			}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		records = append(records, newRecord(fsys, path, info))
	}
	return records, nil
}

// Record stats a single path and returns its metadata.
func Record(fsys afero.Fs, path string) (types.FileRecord, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return types.FileRecord{}, err
	}
	return newRecord(fsys, path, info), nil
}

func newRecord(fsys afero.Fs, path string, info os.FileInfo) types.FileRecord {
	return types.FileRecord{
		Path:    path,
		Name:    info.Name(),
		Ext:     Extension(info.Name()),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Created: CreationTime(fsys, path, info),
	}
}

// Extension returns the suffix after the final "." in name, without the dot.
// Dotfiles such as ".bashrc" and names ending in "." have no extension.
func Extension(name string) string {
	name = filepath.Base(name)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

// CreationTime returns the birth time of a file when the platform and
// filesystem expose one, falling back to the modification time. Non-OS
// filesystems always report the modification time.
func CreationTime(fsys afero.Fs, path string, info os.FileInfo) time.Time {
	if _, ok := fsys.(*afero.OsFs); ok {
		if t, ok := birthTime(path, info); ok {
			return t
		}
	}
	return info.ModTime()
}
