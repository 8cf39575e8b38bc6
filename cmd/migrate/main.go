package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/logger"
)

// migrateLogger routes golang-migrate output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}

func main() {
	var (
		migrationDir string
		verbose      bool
	)
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.BoolVar(&verbose, "v", false, "Log every applied migration")
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Close failed")
		}
	}()
	m.Log = migrateLogger{log: log, verbose: verbose}

	// Ctrl-C finishes the running migration and stops before the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		m.GracefulStop <- true
	}()

	if err := run(m, args); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Nothing to migrate")
			return
		}
		log.Error().Err(err).Str("command", args[0]).Msg("Migration failed")
		stop()
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("No migrations applied")
	case err != nil:
		log.Warn().Err(err).Msg("Version lookup failed")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Done")
	}
}

// run executes one command. "down" without a count rolls back a single
// step; "down all" drops every migration.
func run(m *migrate.Migrate, args []string) error {
	switch cmd := args[0]; cmd {
	case "up":
		if len(args) > 1 {
			n, err := positiveArg(args[1])
			if err != nil {
				return err
			}
			return m.Steps(n)
		}
		return m.Up()
	case "down":
		if len(args) > 1 && args[1] == "all" {
			return m.Down()
		}
		n := 1
		if len(args) > 1 {
			var err error
			if n, err = positiveArg(args[1]); err != nil {
				return err
			}
		}
		return m.Steps(-n)
	case "goto":
		if len(args) < 2 {
			return errors.New("goto requires a version")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Migrate(uint(v))
	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(v)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func positiveArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("step count must be a positive integer, got %q", s)
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up [N]        apply all or the next N migrations")
	fmt.Fprintln(os.Stderr, "  down [N|all]  roll back one, N or all migrations")
	fmt.Fprintln(os.Stderr, "  goto V        migrate up or down to version V")
	fmt.Fprintln(os.Stderr, "  force V       set version V without running migrations")
	fmt.Fprintln(os.Stderr, "  version       print the current version")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
