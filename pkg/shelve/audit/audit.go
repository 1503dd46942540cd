// Package audit measures the byte size of files and directory trees so an
// organize run can confirm nothing was lost.
package audit

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/spf13/afero"
)

// TotalSize returns the size of path if it is a file, or the sum of every
// regular file beneath it if it is a directory. A symlink counts at the
// size of the file it points to and is not descended into. Directories whose base name
// is listed in skipDirs are not descended into. Entries that cannot be read
// contribute zero and are returned as StatErrors; the walk always finishes.
func TotalSize(fsys afero.Fs, path string, skipDirs []string) (int64, []types.StatError) {
	var (
		total    int64
		statErrs []types.StatError
	)

	walkErr := afero.Walk(fsys, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			statErrs = append(statErrs, types.StatError{Path: p, Error: err.Error()})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if p != path && slices.Contains(skipDirs, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := fsys.Stat(p)
			if err != nil {
				statErrs = append(statErrs, types.StatError{Path: p, Error: err.Error()})
				return nil
			}
			info = target
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if walkErr != nil && walkErr != filepath.SkipDir {
		statErrs = append(statErrs, types.StatError{Path: path, Error: walkErr.Error()})
	}

	return total, statErrs
}

// SumRecords returns the combined size of the given records.
func SumRecords(records []types.FileRecord) int64 {
	var total int64
	for _, rec := range records {
		total += rec.Size
	}
	return total
}
