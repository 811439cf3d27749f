package client

import "time"

type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type loginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Featured    bool     `json:"featured"`
	SortOrder   int      `json:"sortOrder"`
	TechStack   []string `json:"techStack"`
}

type Essay struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Featured  bool      `json:"featured"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}
