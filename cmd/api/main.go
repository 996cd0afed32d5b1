package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/pawfinderz-backend/api/controllers"
	"github.com/angelmondragon/pawfinderz-backend/api/routes"
	"github.com/angelmondragon/pawfinderz-backend/internal/auth"
	"github.com/angelmondragon/pawfinderz-backend/internal/dogs"
	"github.com/angelmondragon/pawfinderz-backend/internal/events"
	"github.com/angelmondragon/pawfinderz-backend/internal/matching"
	"github.com/angelmondragon/pawfinderz-backend/internal/stats"
	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/inference"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/migrate"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pubsub"
	"github.com/angelmondragon/pawfinderz-backend/pkg/redis"
	"github.com/angelmondragon/pawfinderz-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	fileStore, err := local.New(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload directory", err)
		os.Exit(1)
	}

	inferenceClient, err := inference.NewClient(cfg.Inference)
	if err != nil {
		logg.Error(context.Background(), "failed to create inference client", err)
		os.Exit(1)
	}

	readyChecks := map[string]controllers.Pinger{
		"db":        dbClient,
		"redis":     redisClient,
		"inference": inferenceClient,
	}

	broadcaster := events.NewBroadcaster(nil, logg)
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		broadcaster = events.NewBroadcaster(pubsubClient.DogEventsPublisher(), logg)
		readyChecks["pubsub"] = pubsubClient
	} else {
		logg.Warn(context.Background(), "gcp project id not set, dog events disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	matchingMetrics := metrics.NewMatchingMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	dogRepo := dogs.NewRepository(dbClient.DB())
	statsRepo := stats.NewRepository(dbClient.DB())

	dogService, err := dogs.NewService(dogs.ServiceParams{
		Repo:           dogRepo,
		Stats:          statsRepo,
		Files:          fileStore,
		Broadcaster:    broadcaster,
		Logger:         logg,
		MaxUploadBytes: cfg.Uploads.MaxUploadBytes(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dog service", err)
		os.Exit(1)
	}

	matchingService, err := matching.NewService(matching.ServiceParams{
		Reports:   dogRepo,
		Extractor: matching.NewExtractor(fileStore, inferenceClient),
		Logger:    logg,
		Metrics:   matchingMetrics,
		Workers:   cfg.Matching.ExtractionWorkers,
		Threshold: cfg.Matching.SimilarityThreshold,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create matching service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			ReadyChecks:     readyChecks,
			MetricsGatherer: registry,
			AuthService:     authService,
			RegisterService: registerService,
			DogService:      dogService,
			MatchingService: matchingService,
			StatsRepo:       statsRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
