package products

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSlugExists = errors.New("product slug already exists")
)

const (
	StatusLive       = "live"
	StatusBeta       = "beta"
	StatusInProgress = "in-progress"
	StatusExperiment = "experiment"
)

// FeaturedLimit caps the featured products list.
const FeaturedLimit = 4

type Product struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Why          string    `json:"why"`
	Problem      string    `json:"problem"`
	CurrentState string    `json:"currentState"`
	Next         string    `json:"next"`
	CtaLabel     *string   `json:"ctaLabel"`
	CtaURL       *string   `json:"ctaUrl"`
	GithubURL    *string   `json:"githubUrl"`
	DemoURL      *string   `json:"demoUrl"`
	Featured     bool      `json:"featured"`
	SortOrder    int       `json:"sortOrder"`
	IconInitials *string   `json:"iconInitials"`
	IconColor    *string   `json:"iconColor"`
	Image        *string   `json:"image"`
	Screenshots  []string  `json:"screenshots"`
	TechStack    []string  `json:"techStack"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
