package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/ultraauth/auth-api/internal/config"
	"github.com/ultraauth/auth-api/internal/infra"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Uint("version", 0, "Target version (for force command)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.DBAdapter != config.AdapterPostgres {
		log.Fatalf("migrations only apply to postgres; current adapter: %s", cfg.DBAdapter)
	}

	m, closeFn, err := infra.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer closeFn()

	switch *command {
	case "up":
		if err := step(m, *steps, true); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if err := step(m, *steps, false); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Println("migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		if dirty {
			fmt.Printf("database is dirty at version %d\n", v)
			os.Exit(1)
		}
		fmt.Printf("current migration version: %d\n", v)
	case "force":
		if *version == 0 {
			log.Fatal("force requires -version")
		}
		if err := m.Force(int(*version)); err != nil {
			log.Fatalf("force version: %v", err)
		}
		fmt.Printf("forced database to version %d\n", *version)
	default:
		log.Fatalf("unknown command %q (supported: up, down, version, force)", *command)
	}
}

func step(m *migrate.Migrate, steps int, up bool) error {
	var err error
	switch {
	case steps > 0 && up:
		err = m.Steps(steps)
	case steps > 0:
		err = m.Steps(-steps)
	case up:
		err = m.Up()
	default:
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
