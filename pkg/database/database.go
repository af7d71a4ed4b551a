package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/shishobooks/locallibrary/pkg/store/bunstore"
	"github.com/shishobooks/locallibrary/pkg/store/memstore"
	"github.com/shishobooks/locallibrary/pkg/store/pgstore"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		qh.log.Err(event.Err).Debug(event.Query, data)
		return
	}
	qh.log.Debug(event.Query, data)
}

// New opens the SQLite database at cfg.DatabaseFilePath.
func New(cfg *config.Config) (*bun.DB, error) {
	drv := sqliteshim.Driver()
	drvCtx, ok := drv.(interface {
		OpenConnector(name string) (driver.Connector, error)
	})
	if !ok {
		return nil, errors.New("sqlite driver does not support OpenConnector")
	}
	connector, err := drvCtx.OpenConnector(cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries))
	// A single connection serializes writers, so lock contention never
	// reaches the retry layer in the common case. It also keeps an in-memory
	// database from splitting across connections.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		break
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	_, err = db.Exec("PRAGMA busy_timeout=?", cfg.DatabaseBusyTimeout.Milliseconds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to set busy_timeout")
	}

	return db, nil
}

// NewPostgres opens a connection pool to cfg.DatabaseURL and waits for the
// server to answer.
func NewPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}
	if cfg.DatabaseMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DatabaseMaxConns)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		err = pool.Ping(ctx)
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		break
	}
	if err != nil {
		pool.Close()
		return nil, errors.WithStack(err)
	}
	return pool, nil
}

// OpenStore opens the store selected by cfg.DatabaseDriver and brings its
// schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	log := logger.FromContext(ctx)

	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store, nothing will be persisted")
		return memstore.New(), nil

	case config.DriverPostgres:
		pool, err := NewPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s := pgstore.New(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil

	case config.DriverSQLite, "":
		db, err := New(cfg)
		if err != nil {
			return nil, err
		}
		group, err := migrations.BringUpToDate(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		if group.ID == 0 {
			log.Info("no new migrations to run")
		} else {
			log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
		}
		return bunstore.New(db), nil
	}

	return nil, errors.Errorf("unknown database driver %q", cfg.DatabaseDriver)
}
