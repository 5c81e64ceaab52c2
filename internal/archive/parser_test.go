package archive

import (
	"io"
	"reflect"
	"strings"
	"testing"
	"unicode/utf16"
)

type memPayload string

func (m memPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(m))), nil
}
func (m memPayload) Size() int64 { return int64(len(m)) }

type fakeMinter struct{ n int }

func (f *fakeMinter) CreateObjectURL(Payload) string {
	f.n++
	return "blob:test/" + strings.Repeat("x", f.n)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		wantTitle    string
		wantFeatures []string
	}{
		{"case preserved, exact dedup", "Lullaby_피아노_Calm_calm.wav", "Lullaby", []string{"피아노", "Calm", "calm"}},
		{"tempo and SN excluded", "Theme_120BPM_SNARE.wav", "Theme", []string{}},
		{"empty title falls back", "_Soft.wav", "Untitled", []string{"Soft"}},
		{"numbering kept in title", "Morning (2)_Warm.wav", "Morning (2)", []string{"Warm"}},
		{"segments trimmed, empties dropped", "Rain_ Dreamy _  _Dreamy.wav", "Rain", []string{"Dreamy"}},
		{"lowercase bpm excluded", "Tide_120bpm_Slow.wav", "Tide", []string{"Slow"}},
		{"sn substring is broad", "Dusk_Sunset_Unsnapped_Glow.wav", "Dusk", []string{"Sunset", "Glow"}},
		{"other bpm kept", "Drive_128BPM.wav", "Drive", []string{"128BPM"}},
		{"no extension", "Plain_Tag", "Plain", []string{"Tag"}},
		{"only extension", ".wav", "Untitled", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, features := SplitName(tt.fileName)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if len(tt.wantFeatures) == 0 {
				if len(features) != 0 {
					t.Errorf("features = %v, want none", features)
				}
				return
			}
			if !reflect.DeepEqual(features, tt.wantFeatures) {
				t.Errorf("features = %v, want %v", features, tt.wantFeatures)
			}
		})
	}
}

func TestSplitName_SNAnywhere(t *testing.T) {
	_, features := SplitName("X_Unsnapped_asn_Snow.wav")
	if len(features) != 0 {
		t.Fatalf("features = %v, want none", features)
	}
}

func TestStripExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"song.wav", "song"},
		{"song.backup.WAV", "song.backup"},
		{"song", "song"},
		{"song.", "song."},
		{".wav", ""},
		{"a_b_c.flac", "a_b_c"},
	}
	for _, tt := range tests {
		if got := StripExtension(tt.in); got != tt.want {
			t.Errorf("StripExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// referenceHash mirrors the shift-and-subtract formulation with explicit masking.
func referenceHash(s string) uint32 {
	var h uint32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + uint32(u)
	}
	signed := int64(int32(h))
	if signed < 0 {
		signed = -signed
	}
	return uint32(signed)
}

func TestHash(t *testing.T) {
	if got := Hash(""); got != 0 {
		t.Errorf("Hash(\"\") = %d, want 0", got)
	}
	if got := Hash("a"); got != 97 {
		t.Errorf("Hash(\"a\") = %d, want 97", got)
	}
	if got := Hash("ab"); got != 3105 {
		t.Errorf("Hash(\"ab\") = %d, want 3105", got)
	}

	for _, s := range []string{
		"Lullaby_피아노_Calm_calm.wav",
		"a very long file name that certainly overflows thirty two bits.wav",
		"🎹_emoji uses surrogate pairs.wav",
	} {
		if got, want := Hash(s), referenceHash(s); got != want {
			t.Errorf("Hash(%q) = %d, want %d", s, got, want)
		}
		if Hash(s) != Hash(s) {
			t.Errorf("Hash(%q) is not deterministic", s)
		}
	}
}

func TestParser_Parse(t *testing.T) {
	minter := &fakeMinter{}
	p := NewParser(DefaultVocabulary(), minter)
	payload := memPayload("RIFF")

	track := p.Parse(Source{Name: "Lullaby_피아노_Calm_calm.wav", Payload: payload})

	if track.ID == "" {
		t.Error("expected generated id")
	}
	if track.FileName != "Lullaby_피아노_Calm_calm.wav" {
		t.Errorf("FileName = %q", track.FileName)
	}
	if track.Title != "Lullaby" {
		t.Errorf("Title = %q", track.Title)
	}
	if track.URL == "" || minter.n != 1 {
		t.Errorf("expected one minted url, got %q (%d)", track.URL, minter.n)
	}
	if track.Blob != payload {
		t.Error("expected payload retained on the track")
	}

	again := p.Parse(Source{Name: "Lullaby_피아노_Calm_calm.wav", Payload: memPayload("other bytes")})
	if again.Gradient != track.Gradient {
		t.Errorf("gradient depends on content: %q vs %q", again.Gradient, track.Gradient)
	}
	if again.ID == track.ID {
		t.Error("ids must not repeat")
	}
}

func TestParser_GradientFromHash(t *testing.T) {
	vocab := DefaultVocabulary()
	// Hash("ab") = 3105, 3105 % 12 = 9
	if got, want := vocab.Gradient("ab"), vocab.Gradients()[9]; got != want {
		t.Errorf("Gradient(ab) = %q, want %q", got, want)
	}
}

func TestIsImportable(t *testing.T) {
	tests := map[string]bool{
		"a.wav":      true,
		"B.WAV":      true,
		"c.Wav":      true,
		"d.mp3":      false,
		"wav":        false,
		"e.wav.txt":  false,
		".DS_Store":  false,
		"notes.wave": false,
	}
	for name, want := range tests {
		if got := IsImportable(name); got != want {
			t.Errorf("IsImportable(%q) = %v, want %v", name, got, want)
		}
	}
}
