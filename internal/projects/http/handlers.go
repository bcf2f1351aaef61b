package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quadratic01/portfolio-api/internal/logging"
	"github.com/quadratic01/portfolio-api/internal/projects/domain"
	"github.com/quadratic01/portfolio-api/internal/projects/github"
	"github.com/quadratic01/portfolio-api/internal/projects/service"
)

// ProjectSyncer is implemented by service.SyncService.
type ProjectSyncer interface {
	Sync(ctx context.Context) service.Result
	Cached(ctx context.Context) []domain.Project
	Account() string
}

// ProfileSource is implemented by github.Client.
type ProfileSource interface {
	GetUser(ctx context.Context, account string) (*github.Profile, error)
}

// Handler bundles the dependencies for project endpoints.
type Handler struct {
	syncer   ProjectSyncer
	profiles ProfileSource
	live     bool
	logger   zerolog.Logger
}

// New creates a project handler. With live set, every listing runs a sync
// cycle; otherwise the scheduler-warmed cache is served and a sync runs only
// when the cache is empty.
func New(syncer ProjectSyncer, profiles ProfileSource, live bool, logger zerolog.Logger) *Handler {
	return &Handler{
		syncer:   syncer,
		profiles: profiles,
		live:     live,
		logger:   logger,
	}
}

// list always answers 200: upstream problems degrade to cached or seed data.
func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()

	var projects []domain.Project
	if !h.live {
		projects = h.syncer.Cached(ctx)
	}
	if h.live || len(projects) == 0 {
		res := h.syncer.Sync(ctx)
		projects = res.Projects
		c.Header("X-Projects-Source", string(res.Source))
	} else {
		c.Header("X-Projects-Source", string(service.SourceCache))
	}

	if projects == nil {
		projects = []domain.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) profile(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.profiles.GetUser(ctx, h.syncer.Account())
	if err != nil {
		logging.FromContext(ctx, h.logger).Error().Err(err).Msg("fetch github profile")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}
