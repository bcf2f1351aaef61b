package domain

import "time"

// Contact is a contact-form submission. Contacts are append-only.
type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewContact represents data needed to create a contact
type NewContact struct {
	Name    string
	Email   string
	Subject *string
	Message string
}
