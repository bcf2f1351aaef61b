package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	httpapi "github.com/quadratic01/portfolio-api/internal/api/http"
	"github.com/quadratic01/portfolio-api/internal/api/http/middleware"
	contacthttp "github.com/quadratic01/portfolio-api/internal/contacts/http"
	"github.com/quadratic01/portfolio-api/internal/metrics"
	projecthttp "github.com/quadratic01/portfolio-api/internal/projects/http"
	"github.com/quadratic01/portfolio-api/internal/storage/memory"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Logger      zerolog.Logger

	Store    *memory.Store
	Redis    httpapi.Pinger
	Metrics  *metrics.Metrics
	Projects ProjectsDeps
	Contacts ContactsDeps

	AllowedOrigins []string
	AdminToken     string
	// TrustedProxies are the addresses whose forwarding headers decide the
	// client IP. Nil means the peer address is always used.
	TrustedProxies []string
}

type ProjectsDeps struct {
	Syncer   projecthttp.ProjectSyncer
	Profiles projecthttp.ProfileSource
	Live     bool
}

type ContactsDeps struct {
	Intake  contacthttp.ContactIntake
	Limiter *middleware.IPRateLimiter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		dep.Logger.Warn().Err(err).Strs("trusted_proxies", dep.TrustedProxies).
			Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store, dep.Redis)
	healthHandler.RegisterRoutes(r)

	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	api := r.Group("/api")

	projectHandler := projecthttp.New(dep.Projects.Syncer, dep.Projects.Profiles, dep.Projects.Live, dep.Logger)
	projectHandler.Register(api)

	var submitGuards []gin.HandlerFunc
	if dep.Contacts.Limiter != nil {
		submitGuards = append(submitGuards, middleware.RateLimit(dep.Contacts.Limiter))
	}
	listGuards := []gin.HandlerFunc{middleware.AdminToken(dep.AdminToken)}

	contactHandler := contacthttp.New(dep.Contacts.Intake, dep.Logger)
	contactHandler.Register(api, submitGuards, listGuards)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID, "X-Projects-Source"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
