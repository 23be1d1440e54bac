package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
)

const (
	ColumnURI     = "uri"
	ColumnContact = "contact"
)

// DiscoverCSV walks root and returns every file with extension ext, sorted so
// duplicate detection sees rows in a stable order.
func DiscoverCSV(root, ext string) ([]string, error) {
	if ext == "" {
		ext = ".csv"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data root %s is not a directory: %w", root, errs.ErrInvalidInput)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadEntries reads the rows of one registry file. The header must name the
// URI and contact columns (case-insensitively); other columns are ignored.
// Rows with the wrong shape are skipped and reported through skipped.
func ReadEntries(path string, delimiter rune) (entries []*Entry, skipped []error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readEntries(f, path, delimiter)
}

func readEntries(r io.Reader, source string, delimiter rune) ([]*Entry, []error, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%s: empty file: %w", source, errs.ErrInvalidInput)
		}
		return nil, nil, fmt.Errorf("%s: read header: %w", source, err)
	}
	uriCol, contactCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case ColumnURI:
			uriCol = i
		case ColumnContact:
			contactCol = i
		}
	}
	if uriCol < 0 || contactCol < 0 {
		return nil, nil, fmt.Errorf("%s: header needs %q and %q columns: %w", source, "URI", "contact", errs.ErrInvalidInput)
	}

	var entries []*Entry
	var skipped []error
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped = append(skipped, fmt.Errorf("%s row %d: %w", source, row, err))
				continue
			}
			return entries, skipped, fmt.Errorf("%s: %w", source, err)
		}
		if uriCol >= len(record) || contactCol >= len(record) {
			skipped = append(skipped, fmt.Errorf("%s row %d: %d fields: %w", source, row, len(record), errs.ErrInvalidInput))
			continue
		}
		if strings.TrimSpace(record[uriCol]) == "" && strings.TrimSpace(record[contactCol]) == "" {
			continue
		}
		entries = append(entries, NewEntry(source, row, record[uriCol], record[contactCol]))
	}
	return entries, skipped, nil
}
