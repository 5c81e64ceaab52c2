package archive

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMoodLimit caps the number of moods offered in the sidebar.
const DefaultMoodLimit = 10

var defaultInstruments = []string{"피아노", "비올라", "첼로", "드럼", "베이스", "기타"}

var defaultGradients = []string{
	"linear-gradient(135deg, #A8A297 0%, #C4BDB3 100%)", // Muted Deep Taupe
	"linear-gradient(135deg, #9BA5A4 0%, #BCC4C3 100%)", // Stormy Slate
	"linear-gradient(135deg, #A59B9B 0%, #C4B8B8 100%)", // Dusty Rose Deep
	"linear-gradient(135deg, #9BA5A3 0%, #B8C4C2 100%)", // Deep Sage
	"linear-gradient(135deg, #9B9FA5 0%, #B8BDC4 100%)", // Muted Denim
	"linear-gradient(135deg, #A5A29B 0%, #C4C1B8 100%)", // Aged Parchment
	"linear-gradient(135deg, #9FA2A8 0%, #BDC0C7 100%)", // Steel Grey
	"linear-gradient(135deg, #A89B9B 0%, #C7B8B8 100%)", // Terra Grey
	"linear-gradient(135deg, #9BA8A1 0%, #B8C7BF 100%)", // Moss Grey
	"linear-gradient(135deg, #9E9E9E 0%, #BCBCBC 100%)", // Deep Concrete
	"linear-gradient(135deg, #9FA2A8 0%, #BDC0C7 100%)", // Shadow Blue
	"linear-gradient(135deg, #AFA89F 0%, #CDC7BC 100%)", // Warm Stone
}

var ErrEmptyPalette = errors.New("archive: gradient palette is empty")

// Vocabulary is the fixed configuration the parser and categorizer work against.
// Build it with DefaultVocabulary, NewVocabulary or LoadVocabulary; the zero value is unusable.
type Vocabulary struct {
	instruments []string
	known       map[string]struct{}
	gradients   []string
	moodLimit   int
}

// VocabularyFile matches the YAML layout accepted by LoadVocabulary.
type VocabularyFile struct {
	Instruments []string `yaml:"instruments"`
	Gradients   []string `yaml:"gradients"`
	MoodLimit   int      `yaml:"mood_limit"`
}

func DefaultVocabulary() Vocabulary {
	v, _ := NewVocabulary(defaultInstruments, defaultGradients, DefaultMoodLimit)
	return v
}

// NewVocabulary copies its inputs so callers cannot mutate the result afterwards.
func NewVocabulary(instruments, gradients []string, moodLimit int) (Vocabulary, error) {
	if len(gradients) == 0 {
		return Vocabulary{}, ErrEmptyPalette
	}
	if moodLimit <= 0 {
		moodLimit = DefaultMoodLimit
	}

	v := Vocabulary{
		instruments: append([]string(nil), instruments...),
		known:       make(map[string]struct{}, len(instruments)),
		gradients:   append([]string(nil), gradients...),
		moodLimit:   moodLimit,
	}
	for _, inst := range v.instruments {
		v.known[inst] = struct{}{}
	}
	return v, nil
}

// LoadVocabulary reads a YAML vocabulary file. Keys left out keep their defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, err
	}

	var file VocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("archive: parse vocabulary %s: %w", path, err)
	}

	instruments := file.Instruments
	if instruments == nil {
		instruments = defaultInstruments
	}
	gradients := file.Gradients
	if gradients == nil {
		gradients = defaultGradients
	}

	return NewVocabulary(instruments, gradients, file.MoodLimit)
}

func (v Vocabulary) Instruments() []string {
	return append([]string(nil), v.instruments...)
}

func (v Vocabulary) Gradients() []string {
	return append([]string(nil), v.gradients...)
}

func (v Vocabulary) MoodLimit() int {
	return v.moodLimit
}

// IsInstrument is an exact, case-sensitive membership test.
func (v Vocabulary) IsInstrument(tag string) bool {
	_, ok := v.known[tag]
	return ok
}

// Gradient picks the palette entry for a file name.
func (v Vocabulary) Gradient(fileName string) string {
	return v.gradients[Hash(fileName)%uint32(len(v.gradients))]
}
