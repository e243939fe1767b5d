package models

import "time"

// ThemePart tells which block of the syllabus a theme belongs to. The
// composite mock exam samples its two pools by part.
type ThemePart string

const (
	PartGeneral  ThemePart = "GENERAL"
	PartSpecific ThemePart = "SPECIFIC"
)

type Theme struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Part      ThemePart `json:"part"`
	SortOrder int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateThemeRequest struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Part      ThemePart `json:"part"`
	SortOrder int       `json:"order"`
}
