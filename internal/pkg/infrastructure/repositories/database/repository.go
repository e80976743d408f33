package database

import (
	"context"
	"fmt"
	"time"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ConnectorConfig struct {
	Host     string
	Port     string
	Username string
	DbName   string
	Password string
	SslMode  string
}

type ConnectorFunc func() (*gorm.DB, error)

// NewSQLiteConnector opens the database at path, or a private in-memory
// database when path is empty.
func NewSQLiteConnector(ctx context.Context, path string) ConnectorFunc {
	if path == "" {
		path = "file::memory:"
	}

	return func() (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Silent),
			CreateBatchSize: 1000,
		})

		if err == nil {
			db.Exec("PRAGMA foreign_keys = ON")
			sqldb, _ := db.DB()
			sqldb.SetMaxOpenConns(1)
		}

		return db, err
	}
}

func NewPostgreSQLConnector(ctx context.Context, cfg ConnectorConfig) ConnectorFunc {
	dbURI := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s password=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DbName, cfg.SslMode, cfg.Password)

	log := logging.GetLoggerFromContext(ctx)

	return func() (*gorm.DB, error) {
		sublogger := log.With().Str("host", cfg.Host).Str("database", cfg.DbName).Logger()

		sublogger.Info().Msg("connecting to database host")

		db, err := gorm.Open(postgres.Open(dbURI), &gorm.Config{
			Logger: logger.New(
				&logadapter{logger: sublogger},
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: true,
					Colorful:                  false,
				},
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		return db, nil
	}
}

// logadapter provides a Printf interface to the gorm logger
// so that we can forward the log data to zerolog
type logadapter struct {
	logger zerolog.Logger
}

func (adapter *logadapter) Printf(format string, args ...interface{}) {
	adapter.logger.Info().Msgf(format, args...)
}
