package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// TestNewLocal tests the Local backend constructors
func TestNewLocal(t *testing.T) {
	t.Run("HostFilesystem", func(t *testing.T) {
		local := NewLocal()
		defer local.Close()

		if !local.OnDisk() {
			t.Error("NewLocal() should be on disk")
		}
		if local.Fs() == nil {
			t.Error("Fs() returned nil")
		}
	})

	t.Run("MemoryFilesystem", func(t *testing.T) {
		local := NewLocalFs(afero.NewMemMapFs())
		defer local.Close()

		if local.OnDisk() {
			t.Error("NewLocalFs(MemMapFs) should not be on disk")
		}
	})

	t.Run("WrappedOsFs", func(t *testing.T) {
		local := NewLocalFs(afero.NewOsFs())
		if !local.OnDisk() {
			t.Error("NewLocalFs(OsFs) should be on disk")
		}
	})
}

// TestLocalRead tests the Read method
func TestLocalRead(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dupnorris-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	content := []byte("test content for reading")
	filePath := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	local := NewLocal()
	ctx := context.Background()

	t.Run("ReadExistingFile", func(t *testing.T) {
		reader, err := local.Read(ctx, filePath)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}

		if !bytes.Equal(data, content) {
			t.Errorf("Read() content = %s, want %s", string(data), string(content))
		}
	})

	t.Run("ReadNonExistentFile", func(t *testing.T) {
		_, err := local.Read(ctx, filepath.Join(tempDir, "nonexistent.txt"))
		if err == nil {
			t.Error("Read() should fail for non-existent file")
		}
	})

	t.Run("OpenFile", func(t *testing.T) {
		file, err := local.OpenFile(filePath)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		file.Close()
	})
}

// TestLocalStat tests the Stat and Exists methods
func TestLocalStat(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/data/a.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	local := NewLocalFs(fs)
	ctx := context.Background()

	info, err := local.Stat(ctx, "/data/a.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 5 {
		t.Errorf("Size = %d, want 5", info.Size)
	}
	if info.IsDir {
		t.Error("IsDir should be false")
	}
	if !info.IsRegular {
		t.Error("IsRegular should be true")
	}

	dirInfo, err := local.Stat(ctx, "/data")
	if err != nil {
		t.Fatalf("Stat(dir) error = %v", err)
	}
	if !dirInfo.IsDir {
		t.Error("IsDir should be true for directory")
	}

	exists, err := local.Exists(ctx, "/data/a.txt")
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true, nil", exists, err)
	}
	exists, err = local.Exists(ctx, "/data/missing.txt")
	if err != nil || exists {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", exists, err)
	}

	if _, err := local.OpenFile("/data/a.txt"); err == nil {
		t.Error("OpenFile() should fail on an in-memory filesystem")
	}
}

// TestLocalCanonical tests path canonicalization
func TestLocalCanonical(t *testing.T) {
	t.Run("ResolvesSymlinks", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "dupnorris-storage-test-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(tempDir)

		realDir := filepath.Join(tempDir, "real")
		if err := os.Mkdir(realDir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		link := filepath.Join(tempDir, "link")
		if err := os.Symlink(realDir, link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		local := NewLocal()
		got, err := local.Canonical(link)
		if err != nil {
			t.Fatalf("Canonical() error = %v", err)
		}
		want, _ := filepath.EvalSymlinks(realDir)
		if got != want {
			t.Errorf("Canonical() = %s, want %s", got, want)
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		local := NewLocal()
		if _, err := local.Canonical("/nonexistent/path/that/does/not/exist"); err == nil {
			t.Error("Canonical() should fail for missing path")
		}
	})

	t.Run("MemoryFilesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		if err := fs.MkdirAll("/A/sub", 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		local := NewLocalFs(fs)

		got, err := local.Canonical("/A/sub/../sub")
		if err != nil {
			t.Fatalf("Canonical() error = %v", err)
		}
		if got != "/A/sub" {
			t.Errorf("Canonical() = %s, want /A/sub", got)
		}

		if _, err := local.Canonical("/B"); err == nil {
			t.Error("Canonical() should fail for missing directory")
		}
	})
}
