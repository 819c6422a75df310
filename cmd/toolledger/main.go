package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/garageops/toolledger/internal/api"
	"github.com/garageops/toolledger/internal/db"
	"github.com/garageops/toolledger/internal/metrics"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/ticket"
)

func main() {
	// Load env from .env if present; flags still win.
	godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: toolledger <init|serve>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: toolledger <init|serve>\n", os.Args[1])
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", envOr("TOOLLEDGER_DB", "toolledger.sqlite3"), "path to SQLite database file")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", *dbPath)
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		os.Remove(*dbPath)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println("Schema initialized.")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", envOr("TOOLLEDGER_DB", "toolledger.sqlite3"), "path to SQLite database file")
	addr := fs.String("addr", envOr("TOOLLEDGER_ADDR", ":8080"), "listen address")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Open database, auto-init schema if the file is new.
	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("migrating database", "error", err)
		os.Exit(1)
	}

	resolver := &ticket.SQLResolver{DB: database}
	notifier := notify.NewNotifier(notify.LogSink{})
	m := metrics.New()

	handler := api.NewRouter(database, resolver, notifier, m)

	slog.Info("server listening", "addr", *addr, "db", *dbPath)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
