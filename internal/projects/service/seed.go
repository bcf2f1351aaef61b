package service

import (
	"fmt"
	"time"

	"github.com/quadratic01/portfolio-api/internal/projects/domain"
)

// projectImages maps repository names to the screenshots bundled with the
// front end. Repositories without an entry have no image.
var projectImages = map[string]string{
	"portfolio-website":    "/images/projects/portfolio-website.png",
	"task-manager-api":     "/images/projects/task-manager-api.png",
	"weather-dashboard":    "/images/projects/weather-dashboard.png",
	"data-pipeline-kit":    "/images/projects/data-pipeline-kit.png",
	"ecommerce-storefront": "/images/projects/ecommerce-storefront.png",
	"chat-app":             "/images/projects/chat-app.png",
}

func imageFor(name string) *string {
	if u, ok := projectImages[name]; ok {
		return &u
	}
	return nil
}

type seedProject struct {
	name        string
	description string
	homepage    string
	language    string
	stars       int
	topics      []string
	createdAt   time.Time
	updatedAt   time.Time
}

// seedProjects is served when GitHub is unreachable and nothing is cached.
// Entries are ordered newest first.
var seedProjects = []seedProject{
	{
		name:        "portfolio-website",
		description: "Personal portfolio with a Go API that mirrors GitHub projects and handles contact requests.",
		language:    "TypeScript",
		stars:       4,
		topics:      []string{"react", "tailwindcss", "portfolio"},
		createdAt:   time.Date(2024, time.November, 2, 10, 0, 0, 0, time.UTC),
		updatedAt:   time.Date(2025, time.June, 14, 18, 30, 0, 0, time.UTC),
	},
	{
		name:        "task-manager-api",
		description: "REST API for teams to track tasks and projects, with token auth and Postgres storage.",
		language:    "Go",
		stars:       7,
		topics:      []string{"go", "rest-api", "postgresql"},
		createdAt:   time.Date(2024, time.August, 21, 9, 15, 0, 0, time.UTC),
		updatedAt:   time.Date(2025, time.April, 3, 12, 0, 0, 0, time.UTC),
	},
	{
		name:        "weather-dashboard",
		description: "Dashboard showing current conditions and a five day forecast for saved cities.",
		homepage:    "https://weather-dashboard.example.dev",
		language:    "JavaScript",
		stars:       2,
		topics:      []string{"javascript", "api", "charts"},
		createdAt:   time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC),
		updatedAt:   time.Date(2025, time.January, 19, 8, 45, 0, 0, time.UTC),
	},
	{
		name:        "data-pipeline-kit",
		description: "Small ETL toolkit for cleaning CSV exports and loading them into a warehouse.",
		language:    "Python",
		stars:       1,
		topics:      []string{"python", "etl", "data"},
		createdAt:   time.Date(2023, time.October, 11, 16, 20, 0, 0, time.UTC),
		updatedAt:   time.Date(2024, time.December, 2, 11, 10, 0, 0, time.UTC),
	},
}

// SeedProjects returns the fixed fallback project set for the account.
func SeedProjects(account string) []domain.NewProject {
	out := make([]domain.NewProject, 0, len(seedProjects))
	for _, s := range seedProjects {
		out = append(out, domain.NewProject{
			Name:            s.name,
			Description:     optional(s.description),
			HTMLURL:         fmt.Sprintf("https://github.com/%s/%s", account, s.name),
			Homepage:        optional(s.homepage),
			Language:        optional(s.language),
			StargazersCount: s.stars,
			Topics:          append([]string(nil), s.topics...),
			ImageURL:        imageFor(s.name),
			CreatedAt:       s.createdAt,
			UpdatedAt:       s.updatedAt,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
