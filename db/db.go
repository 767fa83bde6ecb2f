package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type Command string

const (
	Up     Command = "up"
	Down   Command = "down"
	Status Command = "status"
)

// Migrate runs command against the database behind dsn with the
// embedded migrations.
func Migrate(ctx context.Context, logger *zap.Logger, dsn string, command Command) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("can not open database: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case Up:
		err = goose.UpContext(ctx, conn, migrationsDir)
	case Down:
		err = goose.DownContext(ctx, conn, migrationsDir)
	case Status:
		err = goose.StatusContext(ctx, conn, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}

	logger.Info("migrations done", zap.String("command", string(command)))
	return nil
}

// SetupPostgres brings the schema up to date before the server starts.
func SetupPostgres(ctx context.Context, logger *zap.Logger, dsn string) error {
	return Migrate(ctx, logger, dsn, Up)
}

type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}
