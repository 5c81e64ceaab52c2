package archive

import "slices"

// AllCategory is the sidebar entry that means "no category filter".
const AllCategory = "All"

// Categories is the sidebar vocabulary derived from a track collection.
type Categories struct {
	Instruments []string `json:"instruments"`
	Moods       []string `json:"moods"`
}

type Categorizer struct {
	vocab Vocabulary
}

func NewCategorizer(vocab Vocabulary) Categorizer {
	return Categorizer{vocab: vocab}
}

// Categorize recomputes the vocabulary from scratch on every call.
func (c Categorizer) Categorize(tracks []Track) Categories {
	present := make(map[string]struct{})
	counts := make(map[string]int)
	var order []string

	for _, t := range tracks {
		for _, f := range t.Features {
			if c.vocab.IsInstrument(f) {
				present[f] = struct{}{}
				continue
			}
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}

	instruments := make([]string, 0, len(present))
	for _, inst := range c.vocab.instruments {
		if _, ok := present[inst]; ok {
			instruments = append(instruments, inst)
		}
	}

	// stable: equal counts keep first-seen order
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(order) > c.vocab.moodLimit {
		order = order[:c.vocab.moodLimit]
	}

	moods := make([]string, len(order))
	copy(moods, order)

	return Categories{Instruments: instruments, Moods: moods}
}

// CategorizeFeatures runs the default categorizer.
func CategorizeFeatures(tracks []Track) Categories {
	return NewCategorizer(DefaultVocabulary()).Categorize(tracks)
}
