package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrNotText is returned for files that are not valid UTF-8 text.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// FileError reports a file that could not be read for analysis.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// IsFileError reports whether err is a per-file read failure.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a regular text file and splits it into lines.
func ReadSource(path string) (SourceFile, error) {
	if err := validatePath(path); err != nil {
		return SourceFile{}, &FileError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, &FileError{Path: path, Err: err}
	}
	lines, err := SplitLines(data)
	if err != nil {
		return SourceFile{}, &FileError{Path: path, Err: err}
	}
	return SourceFile{Path: path, Lines: lines}, nil
}

// SplitLines decodes file content into lines. A trailing newline does not
// start an extra empty line, and CRLF endings are normalized.
func SplitLines(data []byte) ([]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrNotText
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n"), nil
}

func validatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", path)
	}
	return nil
}
