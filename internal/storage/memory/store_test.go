package memory

import (
	"sync"
	"testing"
	"time"

	contactdomain "github.com/quadratic01/portfolio-api/internal/contacts/domain"
	projectdomain "github.com/quadratic01/portfolio-api/internal/projects/domain"
	userdomain "github.com/quadratic01/portfolio-api/internal/users/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newProject(name string, updated time.Time) projectdomain.NewProject {
	return projectdomain.NewProject{
		Name:      name,
		HTMLURL:   "https://github.com/someone/" + name,
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
	}
}

func TestReplaceProjects_ResetsIDs(t *testing.T) {
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := s.ReplaceProjects([]projectdomain.NewProject{
		newProject("a", base),
		newProject("b", base),
		newProject("c", base),
	})
	require.Len(t, first, 3)
	for i, p := range first {
		assert.Equal(t, i+1, p.ID)
	}

	second := s.ReplaceProjects([]projectdomain.NewProject{
		newProject("x", base),
		newProject("y", base),
	})
	require.Len(t, second, 2)
	assert.Equal(t, 1, second[0].ID)
	assert.Equal(t, "x", second[0].Name)
	assert.Equal(t, 2, second[1].ID)
	assert.Equal(t, "y", second[1].Name)

	all := s.ListProjects()
	assert.Len(t, all, 2)
	_, ok := s.GetProject(3)
	assert.False(t, ok, "projects from the previous set must be gone")
}

func TestReplaceProjects_Empty(t *testing.T) {
	s := New()
	s.ReplaceProjects([]projectdomain.NewProject{newProject("a", time.Now())})

	out := s.ReplaceProjects(nil)
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.Empty(t, s.ListProjects())
}

func TestCreateProject_ContinuesCounter(t *testing.T) {
	s := New()
	now := time.Now()
	s.ReplaceProjects([]projectdomain.NewProject{newProject("a", now)})

	p := s.CreateProject(newProject("b", now))
	assert.Equal(t, 2, p.ID)
}

func TestListProjects_SortedByUpdatedAtDesc(t *testing.T) {
	s := New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s.ReplaceProjects([]projectdomain.NewProject{
		newProject("old", base.Add(-48*time.Hour)),
		newProject("tie-first", base),
		newProject("new", base.Add(24*time.Hour)),
		newProject("tie-second", base),
	})

	got := s.ListProjects()
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"new", "tie-first", "tie-second", "old"}, names)
}

func TestProjects_TopicsNeverNil(t *testing.T) {
	s := New()
	out := s.ReplaceProjects([]projectdomain.NewProject{newProject("a", time.Now())})
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].Topics)

	got, ok := s.GetProject(1)
	require.True(t, ok)
	assert.NotNil(t, got.Topics)
}

func TestProjects_ReturnsCopies(t *testing.T) {
	s := New()
	in := newProject("a", time.Now())
	in.Description = strPtr("original")
	in.Topics = []string{"go"}
	s.ReplaceProjects([]projectdomain.NewProject{in})

	got, ok := s.GetProject(1)
	require.True(t, ok)
	*got.Description = "mutated"
	got.Topics[0] = "mutated"

	again, _ := s.GetProject(1)
	assert.Equal(t, "original", *again.Description)
	assert.Equal(t, []string{"go"}, again.Topics)
}

func TestCreateContact_AssignsIDAndTime(t *testing.T) {
	stamp := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return stamp }))

	c1 := s.CreateContact(contactdomain.NewContact{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	c2 := s.CreateContact(contactdomain.NewContact{Name: "Bob", Email: "bob@example.com", Message: "yo", Subject: strPtr("Hello")})

	assert.Equal(t, 1, c1.ID)
	assert.Equal(t, 2, c2.ID)
	assert.Equal(t, stamp, c1.CreatedAt)
	assert.Nil(t, c1.Subject)
	require.NotNil(t, c2.Subject)
	assert.Equal(t, "Hello", *c2.Subject)

	got, ok := s.GetContact(2)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.Name)
}

func TestListContacts_SortedByCreatedAtDesc(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	stamps := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(-time.Minute)}
	i := 0
	s := New(WithClock(func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}))

	for _, name := range []string{"first", "second", "third", "fourth"} {
		s.CreateContact(contactdomain.NewContact{Name: name, Email: name + "@example.com", Message: "m"})
	}

	got := s.ListContacts()
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"second", "third", "first", "fourth"}, names)
}

func TestUsers(t *testing.T) {
	s := New()

	u, err := s.CreateUser(userdomain.NewUser{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	_, err = s.CreateUser(userdomain.NewUser{Username: "admin", Password: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	got, ok := s.GetUser(1)
	require.True(t, ok)
	assert.Equal(t, "admin", got.Username)

	byName, ok := s.GetUserByUsername("admin")
	require.True(t, ok)
	assert.Equal(t, 1, byName.ID)

	_, ok = s.GetUserByUsername("nobody")
	assert.False(t, ok)

	u2, err := s.CreateUser(userdomain.NewUser{Username: "second"})
	require.NoError(t, err)
	assert.Equal(t, 2, u2.ID, "a failed insert must not consume an id")
}

func TestCounts(t *testing.T) {
	s := New()
	s.ReplaceProjects([]projectdomain.NewProject{newProject("a", time.Now()), newProject("b", time.Now())})
	s.CreateContact(contactdomain.NewContact{Name: "a", Email: "a@example.com", Message: "m"})

	assert.Equal(t, Counts{Users: 0, Projects: 2, Contacts: 1}, s.Counts())
}

func TestConcurrentContacts_UniqueIDs(t *testing.T) {
	s := New()
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := s.CreateContact(contactdomain.NewContact{Name: "x", Email: "x@example.com", Message: "m"})
			ids <- c.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
