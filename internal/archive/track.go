// Package archive holds the rules that turn imported file names into tracks
// and derive the sidebar vocabulary from a track collection.
package archive

import "io"

// Payload is a handle to the bytes of an imported file.
// The archive never owns it: the session that created it decides when it goes away.
type Payload interface {
	Open() (io.ReadCloser, error)
	Size() int64
}

// Source is one file handed over by the import boundary.
type Source struct {
	Name    string
	Payload Payload
}

// Track is the parsed, immutable record for one imported file.
type Track struct {
	ID       string   `json:"id"`
	FileName string   `json:"file_name"`
	Title    string   `json:"title"`
	Features []string `json:"features"`
	URL      string   `json:"url"`
	Gradient string   `json:"gradient"`

	// Blob is borrowed from the URL registry and is only valid while URL is.
	Blob Payload `json:"-"`
}

// HasFeature reports whether tag is one of the track's features (exact match).
func (t Track) HasFeature(tag string) bool {
	for _, f := range t.Features {
		if f == tag {
			return true
		}
	}
	return false
}
