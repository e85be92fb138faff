package files

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "notes.txt", []byte("hello"))

	infos, err := ValidateFiles([]string{path})
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(infos))
	}
	info := infos[0]
	if info.Name != "notes.txt" || info.Size != 5 {
		t.Fatalf("info = %+v", info)
	}
	if !strings.HasPrefix(info.Type, "text/plain") {
		t.Fatalf("mime type = %q, want text/plain", info.Type)
	}
	if !filepath.IsAbs(info.Path) {
		t.Fatalf("path not absolute: %q", info.Path)
	}
}

func TestValidateFilesUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "blob.zzznope", []byte{0x01})

	infos, err := ValidateFiles([]string{path})
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if infos[0].Type != "application/octet-stream" {
		t.Fatalf("mime type = %q, want application/octet-stream", infos[0].Type)
	}
}

func TestValidateFilesMissing(t *testing.T) {
	if _, err := ValidateFiles([]string{filepath.Join(t.TempDir(), "nope.txt")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateFilesEmptyList(t *testing.T) {
	if _, err := ValidateFiles(nil); err == nil {
		t.Fatalf("expected error for empty file list")
	}
}

func TestValidateFilesRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := ValidateFiles([]string{dir}); err == nil {
		t.Fatalf("expected error for directory")
	}
}

func TestValidateFilesRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "empty.txt", nil)
	if _, err := ValidateFiles([]string{path}); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestValidateFilesRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Sparse file, no 150MB actually written.
	if err := f.Truncate(transfer.MaxFileSize + 1); err != nil {
		f.Close()
		t.Skipf("filesystem does not support sparse truncate: %v", err)
	}
	f.Close()

	_, err = ValidateFiles([]string{path})
	if err == nil {
		t.Fatalf("expected error for oversize file")
	}
	if !errors.Is(err, transfer.ErrFileTooLarge) && !strings.Contains(err.Error(), "too large") {
		t.Fatalf("error does not report the size limit: %v", err)
	}
}

func TestValidateFilesCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeTempFile(t, dir, "good.txt", []byte("ok"))
	missing := filepath.Join(dir, "missing.txt")
	empty := writeTempFile(t, dir, "empty.txt", nil)

	_, err := ValidateFiles([]string{good, missing, empty})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "missing.txt") || !strings.Contains(err.Error(), "empty.txt") {
		t.Fatalf("error should name every invalid file: %v", err)
	}
}

func TestGetTotalSize(t *testing.T) {
	infos := []FileInfo{{Size: 100}, {Size: 250}, {Size: 1}}
	if got := GetTotalSize(infos); got != 351 {
		t.Fatalf("GetTotalSize = %d, want 351", got)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.00 KB"},
		{512 * 1024, "512.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, c := range cases {
		if got := FormatSize(c.bytes); got != c.want {
			t.Errorf("FormatSize(%d) = %q, want %q", c.bytes, got, c.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "report.pdf")
	if got := UniqueFilename(fresh); got != fresh {
		t.Fatalf("fresh name rewritten to %q", got)
	}

	writeTempFile(t, dir, "report.pdf", []byte("x"))
	want := filepath.Join(dir, "report (1).pdf")
	if got := UniqueFilename(fresh); got != want {
		t.Fatalf("UniqueFilename = %q, want %q", got, want)
	}

	writeTempFile(t, dir, "report (1).pdf", []byte("x"))
	want = filepath.Join(dir, "report (2).pdf")
	if got := UniqueFilename(fresh); got != want {
		t.Fatalf("UniqueFilename = %q, want %q", got, want)
	}
}
