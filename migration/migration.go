package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

// Migrate brings the schema of the database in ctx to the latest version.
// MySQL databases are versioned with the embedded sql files, sqlite databases
// are auto migrated from the entities.
func Migrate(ctx context.Context) error {
	if xcontext.Configs(ctx).Database.Driver == "sqlite" {
		return entity.MigrateTable(ctx)
	}

	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(mysqlFS, "mysql")
	if err != nil {
		return err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, xcontext.Configs(ctx).Database.Database, driver)
	if err != nil {
		return err
	}
	m.Log = &migrateLogger{ctx: ctx}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	if dirty {
		return fmt.Errorf("database is dirty at version %d", version)
	}

	xcontext.Logger(ctx).Infof("Database is at version %d", version)
	return nil
}

type migrateLogger struct {
	ctx context.Context
}

func (l *migrateLogger) Printf(format string, v ...any) {
	xcontext.Logger(l.ctx).Infof(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
