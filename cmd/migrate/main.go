package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
	envDSN         = "STOREFRONT_POSTGRES_DSN"
)

// schema — операции над схемой витрины, которые нужны CLI.
type schema interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (postgres.MigrationState, error)
}

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+envDSN+")")
	flag.Parse()

	op, err := parseDirection(direction)
	if err != nil {
		fail("%v", err)
	}
	dsn = resolveDSN(dsn, os.Getenv(envDSN))
	if dsn == "" {
		fail("%s (or -dsn) is required", envDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	state, err := run(ctx, store, op, steps)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(describe(op, state))
}

func parseDirection(raw string) (string, error) {
	op := strings.ToLower(strings.TrimSpace(raw))
	switch op {
	case "up", "down", "status":
		return op, nil
	default:
		return "", fmt.Errorf("unsupported direction: %s (use up|down|status)", raw)
	}
}

// resolveDSN отдаёт приоритет флагу, затем переменной окружения.
func resolveDSN(flagValue, envValue string) string {
	if dsn := strings.TrimSpace(flagValue); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(envValue)
}

func run(ctx context.Context, s schema, op string, steps int) (postgres.MigrationState, error) {
	switch op {
	case "up":
		if err := s.MigrateUp(ctx, steps); err != nil {
			return postgres.MigrationState{}, fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if err := s.MigrateDown(ctx, steps); err != nil {
			return postgres.MigrationState{}, fmt.Errorf("migrate down failed: %w", err)
		}
	}

	state, err := s.MigrationStatus(ctx)
	if err != nil {
		return postgres.MigrationState{}, fmt.Errorf("migration status failed: %w", err)
	}
	return state, nil
}

func describe(op string, state postgres.MigrationState) string {
	prefix := "migration status"
	if op != "status" {
		prefix = "migrate " + op + " ok"
	}
	return fmt.Sprintf("%s: version=%d applied=%d pending=%d", prefix, state.Version, state.Applied, state.Pending())
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
