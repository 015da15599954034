package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"video_01.mp4":         []byte("clip one"),
		"sound_video_01_0.mp4": []byte("clip one with sound"),
	}
	names := make([]string, 0, len(files))
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, dir, names); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(zr.File))
	}
	for _, entry := range zr.File {
		want, ok := files[entry.Name]
		if !ok {
			t.Fatalf("unexpected entry %q", entry.Name)
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("entry %q: got %q, want %q", entry.Name, got, want)
		}
	}
}

func TestWriteArchiveMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteArchive(&buf, t.TempDir(), []string{"absent.mp4"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
