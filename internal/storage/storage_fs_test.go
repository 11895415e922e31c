package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAbsolute_OverwritesDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nonexistent")
	dest := filepath.Join(dir, "output.html")

	// Create a dangling symlink at the destination.
	if err := os.Symlink(target, dest); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(dest, []byte("hello")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	info, err := os.Lstat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("expected regular file, got symlink")
	}
	if _, err := os.Lstat(target); !os.IsNotExist(err) {
		t.Fatal("symlink target should not have been created")
	}
}

func TestWriteFileAbsolute_OverwritesCircularSymlink(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")

	// Create circular symlinks: a -> b -> a
	if err := os.Symlink(b, a); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(a, b); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(a, []byte("content")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "content" {
		t.Fatalf("got %q, want %q", got, "content")
	}
}

func TestWriteSkipsUnchangedContent(t *testing.T) {
	ctx := context.Background()
	s := NewFSStorage(t.TempDir())

	written, err := s.Write(ctx, "man/man1/geogig-init.1", []byte(".TH one"))
	if err != nil || !written {
		t.Fatalf("first write: written=%v err=%v", written, err)
	}
	written, err = s.Write(ctx, "man/man1/geogig-init.1", []byte(".TH one"))
	if err != nil || written {
		t.Fatalf("unchanged write: written=%v err=%v", written, err)
	}
	written, err = s.Write(ctx, "man/man1/geogig-init.1", []byte(".TH two"))
	if err != nil || !written {
		t.Fatalf("changed write: written=%v err=%v", written, err)
	}

	got, err := os.ReadFile(filepath.Join(s.Root, "man", "man1", "geogig-init.1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != ".TH two" {
		t.Fatalf("got %q", got)
	}
	if !s.CheckCache("man/man1/geogig-init.1", Digest([]byte(".TH two"))) {
		t.Fatal("expected cache to hold the latest digest")
	}
}

func TestWriteForceAndMissingFile(t *testing.T) {
	ctx := context.Background()
	s := NewFSStorage(t.TempDir())
	if _, err := s.Write(ctx, "html/index.html", []byte("x")); err != nil {
		t.Fatal(err)
	}

	s.Force = true
	if written, err := s.Write(ctx, "html/index.html", []byte("x")); err != nil || !written {
		t.Fatalf("forced write: written=%v err=%v", written, err)
	}

	s.Force = false
	if err := os.Remove(s.Path("html/index.html")); err != nil {
		t.Fatal(err)
	}
	if written, err := s.Write(ctx, "html/index.html", []byte("x")); err != nil || !written {
		t.Fatalf("write after removal: written=%v err=%v", written, err)
	}
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewFSStorage(t.TempDir())
	if _, err := s.Write(ctx, "a", []byte("x")); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWriteCacheRequiresPath(t *testing.T) {
	s := NewFSStorage(t.TempDir())
	if err := s.WriteCache(context.Background(), "", "abc"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDigest(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Digest([]byte("abc")); got != want {
		t.Fatalf("got %s", got)
	}
}
