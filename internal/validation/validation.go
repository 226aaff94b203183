// Package validation checks names and paths that come from module files,
// bundles and HTTP requests before they reach the filesystem or the library.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Limits.
const (
	// MaxModuleSize is the largest module file the loader will read (256 MB).
	MaxModuleSize = 256 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxModuleIDLength bounds module ids.
	MaxModuleIDLength = 64
)

var (
	ErrPathTraversal   = errors.New("path traversal detected")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrPathTooLong     = errors.New("path too long")
	ErrFilenameTooLong = errors.New("filename too long")
	ErrEmptyPath       = errors.New("path cannot be empty")
	ErrInvalidModuleID = errors.New("invalid module id")
	ErrFormatMismatch  = errors.New("file content does not match extension")
)

// SanitizePath validates a user-supplied path relative to baseDir and
// returns it cleaned. The path may not be absolute or escape baseDir.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// SanitizeMemberPath checks a slash-separated bundle member name. Members
// must be relative and stay inside the bundle.
func SanitizeMemberPath(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPath
	}
	if len(name) > MaxPathLength {
		return "", ErrPathTooLong
	}
	if strings.ContainsRune(name, '\\') || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	if err := ValidateFilename(path.Base(clean)); err != nil {
		return "", err
	}
	return clean, nil
}

// ValidateFilename rejects empty, reserved, over-long and control-character
// names, and names containing separators or starting with a hyphen.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

var moduleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// ValidateModuleID checks a module id: lower-case letters, digits, '_',
// '.' and '-', starting with a letter or digit.
func ValidateModuleID(id string) error {
	if len(id) == 0 || len(id) > MaxModuleIDLength || !moduleIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidModuleID, id)
	}
	return nil
}

// Format is a module file format recognised by the loader.
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONXZ  Format = "json.xz"
	FormatTarGZ   Format = "tar.gz"
	FormatTarXZ   Format = "tar.xz"
	FormatOSIS    Format = "osis"
	FormatSQLite  Format = "sqlite"
	FormatUnknown Format = "unknown"
)

// FormatFromName maps a file name to its module format.
func FormatFromName(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".json.xz"):
		return FormatJSONXZ
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGZ
	case strings.HasSuffix(lower, ".tar.xz"):
		return FormatTarXZ
	case strings.HasSuffix(lower, ".osis.xml"), strings.HasSuffix(lower, ".osis"):
		return FormatOSIS
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return FormatSQLite
	}
	return FormatUnknown
}

var (
	magicGzip   = []byte{0x1f, 0x8b}
	magicXZ     = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	magicSQLite = []byte("SQLite format 3\x00")
)

// CheckFormat reads the head of r and verifies it matches what the file
// name promises. Text formats only need to look like text.
func CheckFormat(r io.Reader, name string) (Format, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	format := FormatFromName(name)
	ok := false
	switch format {
	case FormatJSONXZ, FormatTarXZ:
		ok = bytes.HasPrefix(buf, magicXZ)
	case FormatTarGZ:
		ok = bytes.HasPrefix(buf, magicGzip)
	case FormatSQLite:
		ok = bytes.HasPrefix(buf, magicSQLite)
	case FormatJSON, FormatOSIS:
		ok = isLikelyText(buf)
	default:
		return FormatUnknown, fmt.Errorf("%w: unknown module format %s", ErrFormatMismatch, name)
	}
	if !ok {
		return FormatUnknown, fmt.Errorf("%w: %s is not %s", ErrFormatMismatch, name, format)
	}
	return format, nil
}

// isLikelyText reports whether buf is non-empty, free of NUL bytes and
// mostly printable.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b == '\t' || b == '\n' || b == '\r' || (b >= 0x20 && b <= 0x7e):
			printable++
		case b < 0x20:
			control++
		}
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
