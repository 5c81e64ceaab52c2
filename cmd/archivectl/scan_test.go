package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xr-archive/internal/archive"
)

func writeFolder(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScan(t *testing.T) {
	dir := writeFolder(t, map[string]string{
		"a/Lullaby_피아노_Dreamy.wav": "RIFF1234",
		"a/cover.jpg":              "JPEG",
		"b/Rain_Dreamy_Calm.WAV":   "RIFF",
	})

	r, err := scan(dir, archive.DefaultVocabulary(), archive.Query{Category: "Calm"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if r.Total != 2 || r.Ignored != 1 {
		t.Errorf("total/ignored = %d/%d", r.Total, r.Ignored)
	}
	if len(r.Tracks) != 1 || r.Tracks[0].Title != "Rain" || r.Tracks[0].Key != "b/Rain_Dreamy_Calm.WAV" {
		t.Fatalf("tracks = %+v", r.Tracks)
	}
	if r.Tracks[0].URL != "" {
		t.Errorf("scan must not mint urls, got %q", r.Tracks[0].URL)
	}
	if strings.Join(r.Categories.Moods, ",") != "Dreamy,Calm" {
		t.Errorf("moods = %v", r.Categories.Moods)
	}
}

func TestScan_NotADirectory(t *testing.T) {
	if _, err := scan(filepath.Join(t.TempDir(), "missing"), archive.DefaultVocabulary(), archive.Query{}); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestScanCommand_JSON(t *testing.T) {
	dir := writeFolder(t, map[string]string{"Song_기타.wav": "RIFF"})

	var out bytes.Buffer
	cmdRoot.SetOut(&out)
	cmdRoot.SetArgs([]string{"scan", dir, "--json"})
	if err := cmdRoot.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var r scanReport
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if len(r.Tracks) != 1 || r.Tracks[0].FileName != "Song_기타.wav" {
		t.Errorf("tracks = %+v", r.Tracks)
	}
	if len(r.Categories.Instruments) != 1 || r.Categories.Instruments[0] != "기타" {
		t.Errorf("instruments = %v", r.Categories.Instruments)
	}
}
