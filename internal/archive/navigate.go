package archive

func indexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Next returns the track after currentID, wrapping to the first one.
// An unknown id starts from the top.
func Next(tracks []Track, currentID string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	idx := indexOf(tracks, currentID)
	if idx < len(tracks)-1 {
		return tracks[idx+1], true
	}
	return tracks[0], true
}

// Prev returns the track before currentID, wrapping to the last one.
// An unknown id starts from the bottom.
func Prev(tracks []Track, currentID string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	idx := indexOf(tracks, currentID)
	if idx > 0 {
		return tracks[idx-1], true
	}
	return tracks[len(tracks)-1], true
}
