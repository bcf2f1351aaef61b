package memory

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	contactdomain "github.com/quadratic01/portfolio-api/internal/contacts/domain"
	projectdomain "github.com/quadratic01/portfolio-api/internal/projects/domain"
	userdomain "github.com/quadratic01/portfolio-api/internal/users/domain"
)

var ErrDuplicateUsername = errors.New("username already exists")

// Counts is a snapshot of how many records of each kind the store holds.
type Counts struct {
	Users    int `json:"users"`
	Projects int `json:"projects"`
	Contacts int `json:"contacts"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp contact creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a process-local, non-persistent record store for users,
// projects and contact submissions. Every kind has its own id counter
// starting at 1. All methods are safe for concurrent use and return copies,
// so callers never alias stored records.
type Store struct {
	mu sync.RWMutex

	users    map[int]userdomain.User
	projects map[int]projectdomain.Project
	contacts map[int]contactdomain.Contact

	nextUserID    int
	nextProjectID int
	nextContactID int

	now func() time.Time
}

// New creates an empty store with every counter at 1.
func New(opts ...Option) *Store {
	s := &Store{
		users:         make(map[int]userdomain.User),
		projects:      make(map[int]projectdomain.Project),
		contacts:      make(map[int]contactdomain.Contact),
		nextUserID:    1,
		nextProjectID: 1,
		nextContactID: 1,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id int) (userdomain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return u, ok
}

// GetUserByUsername looks a user up by its unique username.
func (s *Store) GetUserByUsername(username string) (userdomain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return userdomain.User{}, false
}

// CreateUser inserts a user. Usernames are unique.
func (s *Store) CreateUser(in userdomain.NewUser) (userdomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == in.Username {
			return userdomain.User{}, fmt.Errorf("create user %q: %w", in.Username, ErrDuplicateUsername)
		}
	}

	u := userdomain.User{
		ID:       s.nextUserID,
		Username: in.Username,
		Password: in.Password,
	}
	s.nextUserID++
	s.users[u.ID] = u
	return u, nil
}

// GetProject returns the project with the given id.
func (s *Store) GetProject(id int) (projectdomain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return projectdomain.Project{}, false
	}
	return cloneProject(p), true
}

// CreateProject inserts a single project with the next project id.
func (s *Store) CreateProject(in projectdomain.NewProject) projectdomain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertProjectLocked(in)
}

// ReplaceProjects drops every stored project, resets the project id counter
// to 1 and inserts items in input order. The swap happens under one write
// lock, so readers see either the old set or the new one.
func (s *Store) ReplaceProjects(items []projectdomain.NewProject) []projectdomain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.projects)
	s.nextProjectID = 1

	out := make([]projectdomain.Project, 0, len(items))
	for _, in := range items {
		out = append(out, s.insertProjectLocked(in))
	}
	return out
}

// ListProjects returns all projects, most recently updated first. Ties keep
// insertion order.
func (s *Store) ListProjects() []projectdomain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]projectdomain.Project, 0, len(s.projects))
	for _, id := range slices.Sorted(maps.Keys(s.projects)) {
		out = append(out, cloneProject(s.projects[id]))
	}
	slices.SortStableFunc(out, func(a, b projectdomain.Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// CreateContact appends a contact submission stamped with the current time.
func (s *Store) CreateContact(in contactdomain.NewContact) contactdomain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := contactdomain.Contact{
		ID:        s.nextContactID,
		Name:      in.Name,
		Email:     in.Email,
		Subject:   cloneString(in.Subject),
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	s.nextContactID++
	s.contacts[c.ID] = c
	return cloneContact(c)
}

// GetContact returns the contact with the given id.
func (s *Store) GetContact(id int) (contactdomain.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return contactdomain.Contact{}, false
	}
	return cloneContact(c), true
}

// ListContacts returns all contacts, newest first. Ties keep insertion order.
func (s *Store) ListContacts() []contactdomain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contactdomain.Contact, 0, len(s.contacts))
	for _, id := range slices.Sorted(maps.Keys(s.contacts)) {
		out = append(out, cloneContact(s.contacts[id]))
	}
	slices.SortStableFunc(out, func(a, b contactdomain.Contact) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Counts reports how many records of each kind are stored.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		Users:    len(s.users),
		Projects: len(s.projects),
		Contacts: len(s.contacts),
	}
}

func (s *Store) insertProjectLocked(in projectdomain.NewProject) projectdomain.Project {
	topics := slices.Clone(in.Topics)
	if topics == nil {
		topics = []string{}
	}

	p := projectdomain.Project{
		ID:              s.nextProjectID,
		Name:            in.Name,
		Description:     cloneString(in.Description),
		HTMLURL:         in.HTMLURL,
		Homepage:        cloneString(in.Homepage),
		Language:        cloneString(in.Language),
		StargazersCount: in.StargazersCount,
		Topics:          topics,
		ImageURL:        cloneString(in.ImageURL),
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
	s.nextProjectID++
	s.projects[p.ID] = p
	return cloneProject(p)
}

func cloneProject(p projectdomain.Project) projectdomain.Project {
	p.Description = cloneString(p.Description)
	p.Homepage = cloneString(p.Homepage)
	p.Language = cloneString(p.Language)
	p.ImageURL = cloneString(p.ImageURL)
	p.Topics = slices.Clone(p.Topics)
	if p.Topics == nil {
		p.Topics = []string{}
	}
	return p
}

func cloneContact(c contactdomain.Contact) contactdomain.Contact {
	c.Subject = cloneString(c.Subject)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
