package archive

import (
	"strings"
	"unicode/utf16"

	"github.com/google/uuid"
)

const untitled = "Untitled"

// URLMinter hands out playable references for payloads, the way a browser
// hands out object URLs for files.
type URLMinter interface {
	CreateObjectURL(p Payload) string
}

// Parser turns import sources into tracks. It keeps no state between calls,
// so a batch may be parsed in any order or concurrently.
type Parser struct {
	vocab Vocabulary
	urls  URLMinter
	newID func() string
}

func NewParser(vocab Vocabulary, urls URLMinter) *Parser {
	return &Parser{vocab: vocab, urls: urls, newID: uuid.NewString}
}

// Parse never fails: a malformed name degrades to "Untitled" and no features.
func (p *Parser) Parse(src Source) Track {
	title, features := SplitName(src.Name)

	var url string
	if p.urls != nil && src.Payload != nil {
		url = p.urls.CreateObjectURL(src.Payload)
	}

	return Track{
		ID:       p.newID(),
		FileName: src.Name,
		Title:    title,
		Features: features,
		URL:      url,
		Blob:     src.Payload,
		Gradient: p.vocab.Gradient(src.Name),
	}
}

// ParseFile parses one source with the default vocabulary.
func ParseFile(src Source, urls URLMinter) Track {
	return NewParser(DefaultVocabulary(), urls).Parse(src)
}

// SplitName derives the title and the cleaned feature list from a file name.
func SplitName(fileName string) (string, []string) {
	parts := strings.Split(StripExtension(fileName), "_")

	title := parts[0]
	if title == "" {
		title = untitled
	}

	features := make([]string, 0, len(parts)-1)
	seen := make(map[string]struct{}, len(parts)-1)
	for _, raw := range parts[1:] {
		f := strings.TrimSpace(raw)
		if f == "" || shouldExclude(f) {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		features = append(features, f)
	}
	return title, features
}

// StripExtension removes the last ".ext" from a name. A trailing dot or a name
// without a dot is returned unchanged.
func StripExtension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return name
	}
	if strings.ContainsRune(name[idx+1:], '/') {
		return name
	}
	return name[:idx]
}

// shouldExclude drops tempo markers and anything containing "SN".
// The substring rule also catches words like "Sunset"; that is the contract.
func shouldExclude(f string) bool {
	upper := strings.ToUpper(f)
	return upper == "120BPM" || strings.Contains(upper, "SN")
}

// Hash is the 31-multiplier string hash over UTF-16 code units with signed
// 32-bit wraparound, returned as its absolute value.
func Hash(s string) uint32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return uint32(abs)
}

// IsImportable reports whether a selected file passes the import boundary.
func IsImportable(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".wav")
}
