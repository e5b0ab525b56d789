package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dareleague/registration/internal/config"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/log/zapadapter"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// PoolCreation builds the shared pgx pool. Panics if the database is
// unreachable: the service cannot do anything useful without it.
func PoolCreation(ctx context.Context, logger *zap.Logger, conf *config.Entity) *pgxpool.Pool {
	dbConf, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		conf.DB.User, conf.DB.Pass, conf.DB.Hostname, conf.DB.Port, conf.DB.Name))
	if err != nil {
		logger.Panic("Err db config parsing", zap.Error(fmt.Errorf("poolCreation failed: %w", err)))
	}
	dbConf.ConnConfig.Logger = zapadapter.NewLogger(logger)
	dbConf.ConnConfig.LogLevel = pgx.LogLevelError
	dbConf.MaxConnIdleTime = time.Second * 10
	if conf.DB.MaxOpenConns > 0 {
		dbConf.MaxConns = conf.DB.MaxOpenConns
	}
	if conf.DB.MinConns > 0 {
		dbConf.MinConns = conf.DB.MinConns
	}

	pool, err := pgxpool.ConnectConfig(ctx, dbConf)
	if err != nil {
		logger.Panic("Err connection to DB", zap.Error(fmt.Errorf("poolCreation failed: %w", err)))
	}

	return pool
}
