package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreStagePromoteDiscard(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://files.test/uploads/")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	key, err := store.Stage(ctx, "id.PNG", []byte("image-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("extension not normalized: %q", key)
	}

	url, err := store.Promote(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://files.test/uploads/"+key {
		t.Fatalf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(store.PublicDir(), key))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("promoted content = %q", data)
	}

	// A second promote must miss: the staged copy is gone.
	if _, err := store.Promote(ctx, key); err == nil {
		t.Fatal("promote succeeded twice")
	}

	key2, err := store.Stage(ctx, "speed.png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Discard(ctx, key2); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Promote(ctx, key2); err == nil {
		t.Fatal("discarded object promoted")
	}
}

func TestDiskStoreRejectsPathTraversalInKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://files.test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Promote(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatal("traversal key promoted")
	}
}

func TestSanitizeExtWhitelist(t *testing.T) {
	cases := map[string]string{
		"a.png":  ".png",
		"a.JPG":  ".jpg",
		"a.exe":  "",
		"noext":  "",
		"a.webp": ".webp",
	}
	for in, want := range cases {
		if got := sanitizeExt(in); got != want {
			t.Fatalf("sanitizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}
