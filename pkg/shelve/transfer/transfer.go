// Package transfer copies or moves single files into destination folders.
// It never logs; callers decide how to report a failed transfer.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/spf13/afero"
)

// dirPerm is the permission used for every destination folder.
const dirPerm = 0o755

// Error describes a failed copy or move of one file.
type Error struct {
	Path string
	Kind types.FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DirError is returned when a destination folder cannot be created.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Dir, e.Err)
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// Classify maps an error onto a failure kind.
func Classify(err error) types.FailureKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return types.FailureNotFound
	case errors.Is(err, fs.ErrPermission):
		return types.FailurePermission
	default:
		return types.FailureIO
	}
}

// Executor performs filesystem mutations for an organize run.
type Executor struct {
	fs afero.Fs
}

// NewExecutor returns an Executor operating on fsys.
func NewExecutor(fsys afero.Fs) *Executor {
	return &Executor{fs: fsys}
}

// EnsureDir creates dir and any missing parents. Existing folders are left alone.
func (e *Executor) EnsureDir(dir string) error {
	if err := e.fs.MkdirAll(dir, dirPerm); err != nil {
		return &DirError{Dir: dir, Err: err}
	}
	return nil
}

// Transfer places src inside destDir under its own base name. A copy leaves
// src in place; a move removes it. An existing file at the destination is
// overwritten.
func (e *Executor) Transfer(src, destDir string, move bool) error {
	dst := filepath.Join(destDir, filepath.Base(src))

	var err error
	if move {
		err = e.move(src, dst)
	} else {
		err = e.copy(src, dst)
	}
	if err != nil {
		return &Error{Path: src, Kind: Classify(err), Err: err}
	}
	return nil
}

func (e *Executor) move(src, dst string) error {
	err := e.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := e.copy(src, dst); err != nil {
		return err
	}
	return e.fs.Remove(src)
}

// copy streams src to dst, then carries over permission bits and the
// modification time. A partially written dst is removed.
func (e *Executor) copy(src, dst string) error {
	in, err := e.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := e.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = e.fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = e.fs.Remove(dst)
		return err
	}

	if err := e.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return e.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
