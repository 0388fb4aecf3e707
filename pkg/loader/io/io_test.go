package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakshi-kadian/aurelius/pkg/loader"
)

func TestIOGraphFileLoaderCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.txt")
	if err := os.WriteFile(path, []byte("Elon Musk founded SpaceX."), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l := NewIOGraphFileLoader()
	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{ID: "1", FilePath: path, Loader: l})

	got, err := file.GetText(context.Background())
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if string(got) != "Elon Musk founded SpaceX." {
		t.Fatalf("GetText() got = %q", got)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, err = file.GetText(context.Background())
	if err != nil {
		t.Fatalf("GetText() after remove error = %v, want cached content", err)
	}
	if string(got) != "Elon Musk founded SpaceX." {
		t.Fatalf("GetText() after remove got = %q", got)
	}
}

func TestIOGraphFileLoaderMissingFile(t *testing.T) {
	l := NewIOGraphFileLoader()
	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{ID: "1", FilePath: filepath.Join(t.TempDir(), "nope.txt"), Loader: l})
	if _, err := file.GetText(context.Background()); err == nil {
		t.Fatalf("GetText() expected error for missing file")
	}
}

func TestBytesGraphFileLoader(t *testing.T) {
	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{
		ID:       "upload",
		FilePath: "notes.txt",
		Loader:   NewBytesGraphFileLoader([]byte("hello")),
	})
	got, err := file.GetText(context.Background())
	if err != nil || string(got) != "hello" {
		t.Fatalf("GetText() got = %q, %v", got, err)
	}
}
