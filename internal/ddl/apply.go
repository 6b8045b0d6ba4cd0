package ddl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"go.uber.org/zap"

	"notation-mapper/internal/config"
)

// SQLSTATE codes of objects that already exist.
const (
	codeDuplicateTable  = "42P07"
	codeDuplicateObject = "42710"
	codeDuplicateSchema = "42P06"
)

// ErrNoDSN is returned by Open without a connection string.
var ErrNoDSN = errors.New("ddl: database dsn is empty")

// Execer is the part of *sql.DB that Apply needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open connects through the pgx driver and pings the server.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrNoDSN
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return db, nil
}

// Apply executes stmts in order. Statements failing because their object already exists are
// logged and skipped; any other failure stops the run. A duplicate relation reported by a
// create table is a failure, since tables are created with if not exists. It returns the number of executed
// statements.
func Apply(ctx context.Context, db Execer, stmts []string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var applied int

	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if code, ok := alreadyExists(stmt, err); ok {
				logger.Info("ddl skipped, object exists", zap.String("sqlstate", code), zap.Error(err))
				continue
			}

			return applied, fmt.Errorf("ddl apply failed: %w", err)
		}

		applied++
	}

	logger.Debug("ddl applied", zap.Int("statements", applied))

	return applied, nil
}

func alreadyExists(stmt string, err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch pgErr.Code {
	case codeDuplicateTable:
		if isCreateTable(stmt) {
			return "", false
		}

		return pgErr.Code, true
	case codeDuplicateObject, codeDuplicateSchema:
		return pgErr.Code, true
	default:
		return "", false
	}
}

func isCreateTable(stmt string) bool {
	fields := strings.Fields(strings.ToLower(stmt))
	return len(fields) >= 2 && fields[0] == "create" && fields[1] == "table"
}
