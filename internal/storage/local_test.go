package storage

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestLocalProvider_PutListGet(t *testing.T) {
	root := t.TempDir()
	p := NewLocalProvider(root)

	files := map[string]string{
		"set-a/Lullaby_피아노.wav": "RIFF-one",
		"set-a/notes.txt":       "not audio",
		"set-b/Dusk_Calm.WAV":   "RIFF-two",
	}
	for key, body := range files {
		if err := p.Put("", key, strings.NewReader(body), "audio/wav"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	objects, err := p.List("", "set-a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "set-a/Lullaby_피아노.wav" || keys[1] != "set-a/notes.txt" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	obj, err := p.Get("", "set-b/Dusk_Calm.WAV")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	if string(data) != "RIFF-two" {
		t.Errorf("body = %q", data)
	}
	if obj.ContentLength != int64(len("RIFF-two")) {
		t.Errorf("ContentLength = %d", obj.ContentLength)
	}
	if _, ok := obj.Body.(io.ReadSeeker); !ok {
		t.Error("local bodies should be seekable")
	}
}

func TestLocalProvider_RejectsEscapingKeys(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	if _, err := p.Get("bucket", "../../etc/passwd"); err == nil {
		t.Error("expected error for escaping key")
	}
	if err := p.Put("bucket", "../outside.wav", strings.NewReader("x"), ""); err == nil {
		t.Error("expected error for escaping key")
	}
}

func TestClient_SpoolRelease(t *testing.T) {
	libraryRoot := t.TempDir()
	spoolRoot := t.TempDir()
	c := NewClient(NewLocalProvider(libraryRoot), "", NewLocalProvider(spoolRoot))

	obj, err := c.Spool("batch-1/0-Take_Soft.wav", strings.NewReader("RIFF"), 4)
	if err != nil {
		t.Fatalf("spool: %v", err)
	}
	if obj.Size() != 4 {
		t.Errorf("Size = %d, want 4", obj.Size())
	}

	rc, err := obj.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "RIFF" {
		t.Errorf("spooled body = %q", data)
	}

	if err := obj.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(spoolRoot, spoolBucket, "batch-1", "0-Take_Soft.wav")); !os.IsNotExist(err) {
		t.Errorf("spooled file should be gone, stat err = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(spoolRoot, spoolBucket)); !os.IsNotExist(err) {
		t.Errorf("spool should be removed on close, stat err = %v", err)
	}
}

func TestClient_LibraryObjectIsNotReleased(t *testing.T) {
	libraryRoot := t.TempDir()
	lib := NewLocalProvider(libraryRoot)
	if err := lib.Put("", "keep.wav", strings.NewReader("RIFF"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	c := NewClient(lib, "", NewLocalProvider(t.TempDir()))

	infos, err := c.ListLibrary("")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %v", infos, err)
	}
	obj := c.LibraryObject(infos[0])
	if err := obj.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(libraryRoot, "keep.wav")); err != nil {
		t.Errorf("library file must survive release: %v", err)
	}
}
