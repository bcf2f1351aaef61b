package domain

import "time"

// Project is a portfolio entry derived from a public GitHub repository.
// Nullable upstream fields stay nil so they serialize as JSON null.
type Project struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Homepage        *string   `json:"homepage"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	Topics          []string  `json:"topics"`
	ImageURL        *string   `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewProject carries the fields of a project before the store assigns an id.
type NewProject struct {
	Name            string
	Description     *string
	HTMLURL         string
	Homepage        *string
	Language        *string
	StargazersCount int
	Topics          []string
	ImageURL        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
