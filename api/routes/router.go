package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pawfinderz-backend/api/controllers"
	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	"github.com/angelmondragon/pawfinderz-backend/internal/auth"
	"github.com/angelmondragon/pawfinderz-backend/internal/dogs"
	"github.com/angelmondragon/pawfinderz-backend/internal/matching"
	"github.com/angelmondragon/pawfinderz-backend/internal/stats"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	ReadyChecks     map[string]controllers.Pinger
	MetricsGatherer prometheus.Gatherer
	AuthService     auth.Service
	RegisterService auth.RegisterService
	DogService      dogs.Service
	MatchingService *matching.Service
	StatsRepo       *stats.Repository
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	maxUpload := cfg.Uploads.MaxUploadBytes()

	var limiter middleware.RateLimiterStore
	if p.Redis != nil {
		limiter = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.ReadyChecks))
	})

	if p.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/dogs", func(r chi.Router) {
			r.Post("/lost", controllers.SubmitDog(p.DogService, enums.DogCategoryLost, maxUpload, logg))
			r.With(middleware.FoundCooldown(cfg.FoundCooldown, limiter, logg)).
				Post("/found", controllers.SubmitDog(p.DogService, enums.DogCategoryFound, maxUpload, logg))
			r.Get("/lost", controllers.ListDogs(p.DogService, enums.DogCategoryLost, logg))
			r.Get("/found", controllers.ListDogs(p.DogService, enums.DogCategoryFound, logg))
			r.Patch("/{petID}", controllers.UpdateDog(p.DogService, maxUpload, logg))
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", controllers.ListMatches(p.MatchingService, logg))
			r.Post("/reunite", controllers.ReuniteMatch(p.DogService, logg))
			r.Delete("/", controllers.DeleteMatch(p.DogService, logg))
		})

		r.Get("/stats", controllers.GetStats(p.StatsRepo, logg))
	})

	return r
}
