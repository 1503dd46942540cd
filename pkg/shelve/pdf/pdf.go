// Package pdf picks the oldest or newest PDF in a directory and extracts
// its plain text.
package pdf

import (
	"errors"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/spf13/afero"

	"github.com/jamesainslie/shelve/pkg/shelve/probe"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// Extension is the file extension treated as a PDF, compared case-insensitively.
const Extension = "pdf"

// ErrNoCandidates is returned when a directory holds no PDF files.
var ErrNoCandidates = errors.New("no pdf files found")

// ErrUnreadable is returned when a file cannot be parsed as a PDF.
var ErrUnreadable = errors.New("unreadable pdf")

// Candidates returns the PDF files among the direct children of dir.
func Candidates(fsys afero.Fs, dir string) ([]types.FileRecord, error) {
	records, err := probe.ListFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	pdfs := records[:0]
	for _, rec := range records {
		if strings.EqualFold(rec.Ext, Extension) {
			pdfs = append(pdfs, rec)
		}
	}
	return pdfs, nil
}

// SelectExtreme returns the PDF in dir with the earliest creation time when
// pickOldest is set, or the latest otherwise. On a tie the first file
// enumerated wins.
func SelectExtreme(fsys afero.Fs, dir string, pickOldest bool) (*types.FileRecord, error) {
	pdfs, err := Candidates(fsys, dir)
	if err != nil {
		return nil, err
	}
	if len(pdfs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCandidates, dir)
	}

	best := pdfs[0]
	for _, rec := range pdfs[1:] {
		if pickOldest && rec.Created.Before(best.Created) {
			best = rec
		}
		if !pickOldest && rec.Created.After(best.Created) {
			best = rec
		}
	}
	return &best, nil
}

// ExtractText concatenates the plain text of every page in order. Pages
// without extractable text contribute nothing.
func ExtractText(fsys afero.Fs, path string) (text string, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s: %v", ErrUnreadable, path, r)
		}
	}()

	reader, err := lpdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
	}
	return b.String(), nil
}
