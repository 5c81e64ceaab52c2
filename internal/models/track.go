package models

import "time"

// Track is the catalog row for one parsed file of the current import.
// The payload itself never goes into the catalog; URL points into the
// session's object URL registry.
type Track struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Position  int       `gorm:"index;not null" json:"position"`
	FileName  string    `gorm:"not null" json:"file_name"`
	Title     string    `gorm:"index" json:"title"`
	Features  []string  `gorm:"serializer:json" json:"features"`
	URL       string    `gorm:"index" json:"url"`
	Gradient  string    `json:"gradient"`
	Size      int64     `json:"size"`
	Source    string    `json:"source"` // "upload" or "library"
	CreatedAt time.Time `json:"created_at"`
}
