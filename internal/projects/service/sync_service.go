package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/quadratic01/portfolio-api/internal/logging"
	"github.com/quadratic01/portfolio-api/internal/projects/domain"
	"github.com/quadratic01/portfolio-api/internal/projects/github"
)

// Source names the tier a sync result came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceSeed  Source = "seed"
)

// EmptyResultPolicy decides what happens when GitHub answers but no
// repository survives filtering.
type EmptyResultPolicy string

const (
	// EmptyResultKeep keeps a non-empty cache instead of wiping it.
	EmptyResultKeep EmptyResultPolicy = "keep"
	// EmptyResultReplace persists the empty set, replacing the cache.
	EmptyResultReplace EmptyResultPolicy = "replace"
)

// ParseEmptyResultPolicy parses a policy name; empty means keep.
func ParseEmptyResultPolicy(s string) (EmptyResultPolicy, error) {
	switch EmptyResultPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmptyResultKeep:
		return EmptyResultKeep, nil
	case EmptyResultReplace:
		return EmptyResultReplace, nil
	default:
		return "", fmt.Errorf("unknown empty result policy %q (want keep or replace)", s)
	}
}

// ProjectStore is the slice of the record store the pipeline needs.
type ProjectStore interface {
	ListProjects() []domain.Project
	ReplaceProjects(items []domain.NewProject) []domain.Project
}

// RepositorySource lists the repositories of an account.
type RepositorySource interface {
	ListRepositories(ctx context.Context, account string) ([]github.Repository, error)
}

// SyncRecorder counts finished sync cycles.
type SyncRecorder interface {
	RecordSync(source string)
}

// Result is the outcome of one sync cycle.
type Result struct {
	Projects []domain.Project
	Source   Source
}

// DefaultCycleTimeout bounds one shared sync cycle.
const DefaultCycleTimeout = 30 * time.Second

// SyncOptions configures a SyncService.
type SyncOptions struct {
	Account     string
	EmptyPolicy EmptyResultPolicy
	// CycleTimeout bounds a sync cycle independently of any caller.
	CycleTimeout time.Duration
	Recorder     SyncRecorder
	Logger       zerolog.Logger
}

// SyncService refreshes the stored project set from GitHub, falling back to
// the cached set and then to seed data when GitHub cannot be used.
type SyncService struct {
	store   ProjectStore
	source  RepositorySource
	account string
	policy  EmptyResultPolicy
	timeout time.Duration

	recorder SyncRecorder
	logger   zerolog.Logger

	group singleflight.Group
}

// NewSyncService creates a new SyncService
func NewSyncService(store ProjectStore, source RepositorySource, opts SyncOptions) *SyncService {
	if opts.EmptyPolicy == "" {
		opts.EmptyPolicy = EmptyResultKeep
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = DefaultCycleTimeout
	}
	return &SyncService{
		store:    store,
		source:   source,
		account:  opts.Account,
		policy:   opts.EmptyPolicy,
		timeout:  opts.CycleTimeout,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Account returns the GitHub account being mirrored.
func (s *SyncService) Account() string {
	return s.account
}

// Policy returns the active empty result policy.
func (s *SyncService) Policy() EmptyResultPolicy {
	return s.policy
}

// Sync runs one sync cycle. Concurrent calls share a single cycle, so their
// replace steps never interleave. Upstream failures are absorbed: the
// result always comes from one of the live, cache or seed tiers.
//
// The shared cycle keeps the first caller's values (logger) but not its
// cancellation; it is bounded by the cycle timeout instead.
func (s *SyncService) Sync(ctx context.Context) Result {
	v, _, _ := s.group.Do(s.account, func() (any, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.run(cycleCtx), nil
	})
	res := v.(Result)
	// Callers sharing a cycle must not share the backing array.
	res.Projects = slices.Clone(res.Projects)
	return res
}

// Cached returns the stored projects without contacting GitHub.
func (s *SyncService) Cached(_ context.Context) []domain.Project {
	return s.store.ListProjects()
}

func (s *SyncService) run(ctx context.Context) Result {
	logger := logging.FromContext(ctx, s.logger)
	cached := s.store.ListProjects()

	repos, err := s.source.ListRepositories(ctx, s.account)
	if err != nil {
		if len(cached) > 0 {
			logger.Warn().Err(err).Int("cached", len(cached)).Msg("github unavailable, serving cached projects")
			return s.finish(Result{Projects: cached, Source: SourceCache})
		}
		logger.Warn().Err(err).Msg("github unavailable and cache empty, serving seed projects")
		seeded := s.store.ReplaceProjects(SeedProjects(s.account))
		return s.finish(Result{Projects: seeded, Source: SourceSeed})
	}

	mapped := make([]domain.NewProject, 0, len(repos))
	for _, repo := range repos {
		if !Qualifies(repo, s.account) {
			continue
		}
		mapped = append(mapped, ToNewProject(repo))
	}

	if len(mapped) == 0 && len(cached) > 0 && s.policy == EmptyResultKeep {
		logger.Warn().Int("fetched", len(repos)).Int("cached", len(cached)).
			Msg("no repository passed the filter, keeping cached projects")
		return s.finish(Result{Projects: cached, Source: SourceCache})
	}

	persisted := s.store.ReplaceProjects(mapped)
	logger.Info().Int("fetched", len(repos)).Int("persisted", len(persisted)).Msg("projects synced from github")
	return s.finish(Result{Projects: persisted, Source: SourceLive})
}

func (s *SyncService) finish(res Result) Result {
	if s.recorder != nil {
		s.recorder.RecordSync(string(res.Source))
	}
	return res
}

// Qualifies reports whether a repository belongs in the portfolio: public,
// not a fork, not the account's profile README repository, and not a config
// or template repository. Name checks are case-sensitive.
func Qualifies(repo github.Repository, account string) bool {
	switch {
	case repo.Private, repo.Fork:
		return false
	case repo.Name == account:
		return false
	case strings.Contains(repo.Name, "config"), strings.Contains(repo.Name, "template"):
		return false
	}
	return true
}

// ToNewProject maps a repository onto the project shape. Missing optional
// values stay null; empty strings are passed through.
func ToNewProject(repo github.Repository) domain.NewProject {
	stars := 0
	if repo.StargazersCount != nil && *repo.StargazersCount > 0 {
		stars = *repo.StargazersCount
	}
	topics := slices.Clone(repo.Topics)
	if topics == nil {
		topics = []string{}
	}

	return domain.NewProject{
		Name:            repo.Name,
		Description:     clonePtr(repo.Description),
		HTMLURL:         repo.HTMLURL,
		Homepage:        clonePtr(repo.Homepage),
		Language:        clonePtr(repo.Language),
		StargazersCount: stars,
		Topics:          topics,
		ImageURL:        imageFor(repo.Name),
		CreatedAt:       repo.CreatedAt,
		UpdatedAt:       repo.UpdatedAt,
	}
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
