package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blog-backend/config"
)

// Open connects to the database selected by DB_TYPE:
//
//	supa      Supabase postgres built from SUPABASE_DB_* values
//	postgres  any postgres reachable through DATABASE_URL
//	sqlite    a local file at SQLITE_PATH
//
// Postgres connections register every DSN in DB_REPLICA_DSNS as a read replica.
func Open(cfg map[string]string) (*gorm.DB, error) {
	dbType := config.GetString(cfg, "DB_TYPE", "sqlite")
	dialector, err := dialectorFor(dbType, cfg)
	if err != nil {
		return nil, err
	}

	gormLog := log.With().Str("component", "gorm").Logger()
	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger: logger.New(&gormLog, logger.Config{
			SlowThreshold:             config.GetDuration(cfg, "DB_SLOW_THRESHOLD_SECONDS", time.Second, 10),
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", dbType, err)
	}

	if dbType == "sqlite" {
		return db, nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, fmt.Errorf("enabling uuid-ossp extension: %w", err)
	}

	if replicas := config.GetList(cfg, "DB_REPLICA_DSNS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, postgresDialector(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("registering read replicas: %w", err)
		}
		log.Info().Int("replicas", len(dialectors)).Msg("read replicas registered")
	}

	return db, nil
}

func dialectorFor(dbType string, cfg map[string]string) (gorm.Dialector, error) {
	switch dbType {
	case "supa":
		return postgresDialector(supabaseDSN(cfg)), nil
	case "postgres":
		dsn := config.GetString(cfg, "DATABASE_URL", "")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
		}
		return postgresDialector(dsn), nil
	case "sqlite":
		return sqlite.Open(config.GetString(cfg, "SQLITE_PATH", "blog.db")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

func postgresDialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}

func supabaseDSN(cfg map[string]string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		config.GetString(cfg, "SUPABASE_DB_HOST", ""),
		config.GetString(cfg, "SUPABASE_DB_USER", ""),
		config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(cfg, "SUPABASE_DB_NAME", ""),
		config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
	)
}
