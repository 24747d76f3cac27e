package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

// ErrMigrationUsage marks a bad command line; callers print usage and exit 2.
var ErrMigrationUsage = errors.New("usage: migration <up|down [steps]|version|force <version>|goto <version>>")

// migrationsDirs are searched in order. Empty entries come from unset env vars.
var migrationsDirs = []string{
	os.Getenv("MIGRATIONS_DIR"),
	"./db/migrations",
	"/app/db/migrations",
}

type migrationPlan struct {
	action string
	steps  int
	target uint
}

func parseMigrationArgs(args []string) (migrationPlan, error) {
	if len(args) == 0 {
		return migrationPlan{}, ErrMigrationUsage
	}
	plan := migrationPlan{action: strings.ToLower(strings.TrimSpace(args[0]))}
	operand := ""
	if len(args) > 1 {
		operand = strings.TrimSpace(args[1])
	}

	switch plan.action {
	case "up", "version":
		return plan, nil
	case "down":
		plan.steps = 1
		if operand == "" {
			return plan, nil
		}
		n, err := strconv.Atoi(operand)
		if err != nil || n < 1 {
			return migrationPlan{}, fmt.Errorf("%w: down steps %q must be a positive integer", ErrMigrationUsage, operand)
		}
		plan.steps = n
		return plan, nil
	case "force", "goto":
		if operand == "" {
			return migrationPlan{}, fmt.Errorf("%w: %s needs a version", ErrMigrationUsage, plan.action)
		}
		v, err := strconv.ParseUint(operand, 10, 31)
		if err != nil {
			return migrationPlan{}, fmt.Errorf("%w: version %q: %v", ErrMigrationUsage, operand, err)
		}
		plan.target = uint(v)
		return plan, nil
	}
	return migrationPlan{}, fmt.Errorf("%w: unknown command %q", ErrMigrationUsage, plan.action)
}

func findMigrationsDir(candidates []string) (string, error) {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.New("no migrations directory found; set MIGRATIONS_DIR")
}

// RunMigration applies one golang-migrate command to DB_URL. "version" prints
// to out. A migration that changes nothing is not an error.
func RunMigration(cfg config.Config, args []string, out io.Writer, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	plan, err := parseMigrationArgs(args)
	if err != nil {
		return err
	}
	if cfg.DBURL == "" {
		return errors.New("DB_URL is required")
	}
	dir, err := findMigrationsDir(migrationsDirs)
	if err != nil {
		return err
	}

	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(source, postgresDSN(cfg.DBURL).forDriver(cfg.DBDisablePreparedBinary))
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	switch plan.action {
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			_, err = fmt.Fprintln(out, "version: none\ndirty: false")
			return err
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		_, err = fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
		return err
	case "force":
		if err := m.Force(int(plan.target)); err != nil {
			return fmt.Errorf("force version %d: %w", plan.target, err)
		}
		logger.Info("forced migration version", "version", plan.target)
		return nil
	}

	switch plan.action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-plan.steps)
	case "goto":
		err = m.Migrate(plan.target)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current", "command", plan.action, "db_name", postgresDSN(cfg.DBURL).database())
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", plan.action, err)
	}
	logger.Info("migration applied", "command", plan.action, "steps", plan.steps, "target", plan.target, "source", source)
	return nil
}
