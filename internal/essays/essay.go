package essays

import (
	"errors"
	"time"
)

var (
	ErrEssayNotFound   = errors.New("essay not found")
	ErrEssaySlugExists = errors.New("essay slug already exists")
)

const (
	// PublicListLimit caps the public essays list
	PublicListLimit = 12
	FeaturedLimit   = 3
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

type Essay struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Featured  bool      `json:"featured"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
