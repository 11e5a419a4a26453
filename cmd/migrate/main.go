// Command migrate applies or reverts the embedded database migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/todomanager/todomanager/internal/migrate"
	"github.com/todomanager/todomanager/migrations"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		direction   = flag.String("direction", "up", "Migration direction: up or down")
		steps       = flag.Int("steps", 1, "Number of migrations to revert when direction=down")
		timeout     = flag.Duration("timeout", time.Minute, "Overall timeout")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := migrate.Open(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer db.Close()

	m := migrate.New(db, migrations.FS, logger)

	var done []string
	switch *direction {
	case "up":
		done, err = m.Up(ctx)
	case "down":
		if *steps < 1 {
			fmt.Fprintln(os.Stderr, "steps must be at least 1")
			os.Exit(1)
		}
		done, err = m.Down(ctx, *steps)
	default:
		fmt.Fprintln(os.Stderr, "invalid direction; use up or down")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	if len(done) == 0 {
		fmt.Println("no migrations to run")
		return
	}
	for _, v := range done {
		fmt.Println(*direction, v)
	}
}
