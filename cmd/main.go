package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/edugrant/config"
	"github.com/oksasatya/edugrant/internal/container"
	"github.com/oksasatya/edugrant/internal/infrastructure/gemini"
	"github.com/oksasatya/edugrant/internal/infrastructure/mailqueue"
	"github.com/oksasatya/edugrant/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/edugrant/internal/infrastructure/postgres"
	"github.com/oksasatya/edugrant/internal/infrastructure/redisstore"
	"github.com/oksasatya/edugrant/internal/infrastructure/search"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
	"github.com/oksasatya/edugrant/internal/router"
	"github.com/oksasatya/edugrant/internal/scheduler"
	"github.com/oksasatya/edugrant/pkg/helpers"
	mailtpl "github.com/oksasatya/edugrant/pkg/mailer/templates"
	"github.com/oksasatya/edugrant/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Redis backs one-time codes, the session denylist and rate limits
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unreachable; using in-process code store and no rate limits")
			_ = rdb.Close()
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
		}
	}

	stores, closeStores := buildStores(ctx, cfg, logger, rdb)
	defer closeStores()

	jwtManager := helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL, cfg.AppName)
	cookies := helpers.NewCookie(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure)

	adapters := container.Adapters{Sender: &mailqueue.LogSender{Logger: logger, Reveal: cfg.Env == "development"}}

	// Verification emails go through RabbitMQ to cmd/email_worker
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
		adapters.Sender = mailqueue.NewCodeSender(pub, mailtpl.Brand{
			AppName:        cfg.AppName,
			CompanyName:    cfg.CompanyName,
			CompanyAddress: cfg.CompanyAddress,
			LogoURL:        cfg.LogoURL,
			SupportURL:     cfg.SupportURL,
		})
	}

	// Elasticsearch (optional)
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.Fatalf("failed to init elasticsearch client: %v", err)
	}
	if es != nil {
		container.SetES(es)
		adapters.Index = search.NewScholarshipIndex(es, cfg.ESScholarshipsIndex)
	}

	// GCS avatars (optional)
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		adapters.Avatars = &helpers.GCSAvatarStore{Client: gcsClient, Bucket: cfg.GCSBucket}
	}

	// Gemini assistant (optional; without a key the endpoint answers UPSTREAM_SERVICE_ERROR)
	if cfg.GeminiAPIKey != "" {
		completer, err := gemini.NewCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatalf("failed to init gemini: %v", err)
		}
		defer func() { _ = completer.Close() }()
		adapters.Completer = completer
	} else {
		logger.Warn("GEMINI_API_KEY not set; assistant disabled")
	}

	services := container.BuildServices(cfg, logger, jwtManager, stores, adapters)

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetCookies(cookies)
	container.SetServices(services)

	// Daily deadline reminders
	middleware.Registry.MustRegister(scheduler.Collectors()...)
	sweeps, err := scheduler.New(cfg.DeadlineSweepCron, cfg.Location(),
		&scheduler.DeadlineJob{Sweeper: services.Notifications, Logger: logger}, logger)
	if err != nil {
		logger.Fatalf("invalid DEADLINE_SWEEP_CRON: %v", err)
	}
	sweeps.Start()

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Metrics())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r, "/api")
	router.InitModules(reg)
	reg.RegisterAll()
	reg.LogRoutes(logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	cronCtx := sweeps.Stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	select {
	case <-cronCtx.Done():
	case <-ctxShutdown.Done():
		logger.Warn("deadline sweep still running at shutdown")
	}
	logger.Info("server exited properly")
}

// buildStores picks the persistence driver. Codes and the denylist live in Redis when it is available.
func buildStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger, rdb *redis.Client) (container.Stores, func()) {
	var (
		st      container.Stores
		closeFn = func() {}
	)
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("STORAGE_DRIVER=memory; data is lost on restart")
		mem := memory.New()
		st = container.Stores{
			Identities:    mem.Identities(),
			Codes:         mem.Codes(),
			Denylist:      mem.Denylist(),
			Scholarships:  mem.Scholarships(),
			Applications:  mem.Applications(),
			Notifications: mem.Notifications(),
		}
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		closeFn = pool.Close
		// Run migrations using database/sql with pgx stdlib
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		mem := memory.New()
		st = container.Stores{
			Identities:    pginfra.NewIdentityRepository(pool),
			Codes:         mem.Codes(),
			Denylist:      mem.Denylist(),
			Scholarships:  pginfra.NewScholarshipRepository(pool),
			Applications:  pginfra.NewApplicationRepository(pool),
			Notifications: pginfra.NewNotificationRepository(pool),
		}
	default:
		logger.Fatalf("unknown STORAGE_DRIVER %q (want postgres or memory)", cfg.StorageDriver)
	}
	if rdb != nil {
		st.Codes = redisstore.NewCodeStore(rdb)
		st.Denylist = redisstore.NewDenylist(rdb)
	}
	return st, closeFn
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
