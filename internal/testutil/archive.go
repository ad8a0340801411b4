// Package testutil builds driver archives for tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// File is an archive entry. Directories end in "/".
type File struct {
	Name    string
	Content string
	Mode    int64
}

// Files turns a name->content map into entries with mode 0755, sorted by name.
func Files(contents map[string]string) []File {
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]File, len(names))
	for i, name := range names {
		files[i] = File{Name: name, Content: contents[name], Mode: 0o755}
	}
	return files
}

// Zip returns a zip archive holding files.
func Zip(t *testing.T, files []File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		header := &zip.FileHeader{Name: f.Name, Method: zip.Deflate}
		if f.Mode != 0 {
			header.SetMode(os.FileMode(f.Mode))
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			t.Fatalf("write zip entry %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// TarGz returns a gzip-compressed tar archive holding files.
func TarGz(t *testing.T, files []File) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, f := range files {
		header := &tar.Header{
			Name:     f.Name,
			Mode:     f.Mode,
			Size:     int64(len(f.Content)),
			Typeflag: tar.TypeReg,
		}
		if f.Name[len(f.Name)-1] == '/' {
			header.Typeflag = tar.TypeDir
			header.Size = 0
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write tar header %s: %v", f.Name, err)
		}
		if header.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(f.Content)); err != nil {
				t.Fatalf("write tar entry %s: %v", f.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

// Archive builds an archive of the given format ("zip" or "tar.gz").
func Archive(t *testing.T, format string, files []File) []byte {
	t.Helper()

	switch format {
	case "zip":
		return Zip(t, files)
	case "tar.gz":
		return TarGz(t, files)
	default:
		t.Fatalf("unsupported archive format %q", format)
		return nil
	}
}

// WriteArchive writes an archive of the given format to path.
func WriteArchive(t *testing.T, path, format string, files []File) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create archive dir: %v", err)
	}
	if err := os.WriteFile(path, Archive(t, format, files), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}
