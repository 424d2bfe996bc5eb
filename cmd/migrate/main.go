// Command migrate manages the schema of the SQLite feed cache.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"video_resolver/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/cache.db"), "path to the sqlite cache database")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] up|down|status")
		os.Exit(2)
	}
	cmd := flag.Arg(0)

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open cache database %s: %v", *dbPath, err)
	}
	defer func() { _ = db.Close() }()

	if cmd == "up" {
		// Same path the server takes on startup.
		err = migrations.Run(db)
	} else {
		err = run(db, cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func run(db *sql.DB, cmd string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(migrations.Dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	switch cmd {
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
