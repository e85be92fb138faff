// Package files validates and describes files before they enter a
// transfer.
package files

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

// FileInfo holds information about a file to be sent.
type FileInfo struct {
	// Path is the absolute path to the file.
	Path string

	// Name is the filename without directory.
	Name string

	// Size is the file size in bytes.
	Size int64

	// Type is the MIME type, e.g. "application/pdf".
	Type string
}

// ValidateFiles checks that all files exist, are readable, and are
// within the transfer size limit. Returns an error describing every
// invalid file if any check fails.
func ValidateFiles(filePaths []string) ([]FileInfo, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no files specified")
	}

	var fileInfos []FileInfo
	var errs []string

	for _, path := range filePaths {
		info, err := validateSingleFile(path)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		fileInfos = append(fileInfos, info)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("file validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return fileInfos, nil
}

func validateSingleFile(path string) (FileInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%s: failed to get absolute path: %w", path, err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, fmt.Errorf("%s: file does not exist", path)
		}
		return FileInfo{}, fmt.Errorf("%s: failed to stat file: %w", path, err)
	}

	if stat.IsDir() {
		return FileInfo{}, fmt.Errorf("%s: is a directory (directories not supported)", path)
	}
	if stat.Size() == 0 {
		return FileInfo{}, fmt.Errorf("%s: file is empty", path)
	}
	if stat.Size() > transfer.MaxFileSize {
		return FileInfo{}, fmt.Errorf("%s: %w (%s, limit %s)", path,
			transfer.ErrFileTooLarge, FormatSize(stat.Size()), FormatSize(transfer.MaxFileSize))
	}

	file, err := os.Open(absPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%s: cannot open file (check permissions): %w", path, err)
	}
	file.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(absPath))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return FileInfo{
		Path: absPath,
		Name: filepath.Base(absPath),
		Size: stat.Size(),
		Type: mimeType,
	}, nil
}

// GetTotalSize returns the total size of all files.
func GetTotalSize(fileInfos []FileInfo) int64 {
	var total int64
	for _, f := range fileInfos {
		total += f.Size
	}
	return total
}

// FormatSize formats bytes to a human readable string.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// UniqueFilename returns a filename that does not collide with an
// existing file, appending (1), (2), ... as needed.
func UniqueFilename(filename string) string {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return filename
	}

	ext := filepath.Ext(filename)
	nameWithoutExt := filename[:len(filename)-len(ext)]

	counter := 1
	for {
		candidate := fmt.Sprintf("%s (%d)%s", nameWithoutExt, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		counter++
	}
}
