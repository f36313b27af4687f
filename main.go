package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/api"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()
	log.Logger = newLogger(cfg)
	ctx := context.Background()

	if path := config.GetString(cfg, "SSM_PARAMETER_PATH", ""); path != "" {
		added, err := config.LoadSSMParameters(ctx, cfg, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("loading SSM parameters")
		}
		log.Info().Int("parameters", added).Str("path", path).Msg("SSM parameters loaded")
	}

	log.Info().Str("dbType", config.GetString(cfg, "DB_TYPE", "sqlite")).Msg("connecting to database")
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}

	// If generating models, run generation and exit
	if config.GetBool(cfg, "GENERATE_MODELS", false) {
		fmt.Println("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		fmt.Println("Generating column mismatch report...")
		models.GenerateColumnMismatchReportStandalone(db)
		return
	}

	if config.GetBool(cfg, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrating models")
		}
	}

	currentDB := database.New(db)

	pager, err := services.NewPager(config.GetString(cfg, "ARTICLE_PAGINATION", "keyset"), currentDB.ArticleRepo())
	if err != nil {
		log.Fatal().Err(err).Msg("building article pager")
	}
	articles := services.NewArticleService(currentDB, pager, config.GetInt(cfg, "ARTICLES_PAGE_SIZE", services.DefaultPageSize))
	reading := services.NewReadingService(currentDB)
	sessions := services.NewSessionManager(currentDB, services.NewMailerFromConfig(cfg))

	identity, accounts, err := newIdentityProvider(cfg, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("configuring identity provider")
	}

	media, err := services.NewMediaStoreFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("configuring media store")
	}
	if media == nil {
		log.Warn().Msg("no media store configured, image uploads are disabled")
	}

	if config.GetBool(cfg, "CREATE_ADMIN", false) {
		if err := createAdmin(ctx, cfg, currentDB, sessions, accounts); err != nil {
			log.Fatal().Err(err).Msg("provisioning admin")
		}
	}

	server, err := api.NewServer(cfg, api.Dependencies{
		Database: currentDB,
		Articles: articles,
		Reading:  reading,
		Sessions: sessions,
		Identity: identity,
		Accounts: accounts,
		Media:    media,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("initializing server")
	}

	serve(server, listenToInterrupt, 30*time.Second)
}

type lifecycle interface {
	Start(errChannel chan<- error)
	ShutdownGracefully(timeout time.Duration)
}

// serve starts server and blocks until it fails or interrupt reports a
// signal, then shuts it down. The channel has room for both senders, so the
// one that loses the race never blocks.
func serve(server lifecycle, interrupt func(chan<- error), timeout time.Duration) error {
	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go interrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("closing server")

	server.ShutdownGracefully(timeout)
	return fatalErr
}

// newLogger builds the process logger: JSON by default, a console writer
// when ENV is development
func newLogger(cfg map[string]string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var level zerolog.Level
	switch config.GetString(cfg, "LOG_LEVEL", "info") {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	if config.GetString(cfg, "ENV", "") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Caller().
			Str("service", "blog-backend").
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "blog-backend").
		Logger()
}

// newIdentityProvider returns the provider selected by AUTH_PROVIDER. The
// local provider is also returned as accounts so the server can expose
// registration and login.
func newIdentityProvider(cfg map[string]string, db database.Database) (services.IdentityProvider, *services.LocalIdentityProvider, error) {
	switch provider := config.GetString(cfg, "AUTH_PROVIDER", "local"); provider {
	case "local":
		secret := config.GetString(cfg, "JWT_SECRET", "")
		if secret == "" {
			return nil, nil, fmt.Errorf("JWT_SECRET is required for the local identity provider")
		}
		ttl := config.GetDuration(cfg, "SESSION_TTL_HOURS", time.Hour, 168)
		local := services.NewLocalIdentityProvider(db, secret, ttl)
		return local, local, nil
	case "descope":
		hosted, err := services.NewDescopeIdentityProvider(config.GetString(cfg, "DESCOPE_PROJECT_ID", ""))
		if err != nil {
			return nil, nil, err
		}
		return hosted, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported AUTH_PROVIDER %q", provider)
	}
}

// createAdmin makes sure the configured admin has a profile with the admin
// flag. With the local provider the account is created when missing; a
// hosted provider only needs the subject it issues for that person.
func createAdmin(ctx context.Context, cfg map[string]string, db database.Database, sessions *services.SessionManager, accounts *services.LocalIdentityProvider) error {
	spec := services.AdminSpec{
		Email:       config.GetString(cfg, "ADMIN_EMAIL", ""),
		Password:    config.GetString(cfg, "ADMIN_PASSWORD", ""),
		DisplayName: config.GetString(cfg, "ADMIN_DISPLAY_NAME", ""),
		Subject:     config.GetString(cfg, "ADMIN_SUBJECT", ""),
	}

	var identity *services.Identity
	if accounts != nil {
		var err error
		if identity, err = services.EnsureLocalAdmin(ctx, accounts, spec); err != nil {
			return err
		}
	} else {
		identity = &services.Identity{Subject: spec.Subject, Email: spec.Email, DisplayName: spec.DisplayName}
	}

	return services.ProvisionAdmin(ctx, db, sessions, identity)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
