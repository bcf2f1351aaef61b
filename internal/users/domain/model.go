package domain

// User is an operator account. It is kept in the record store but has no
// HTTP surface.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// NewUser represents data needed to create a new user
type NewUser struct {
	Username string
	Password string
}
