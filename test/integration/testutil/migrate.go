//go:build integration

package testutil

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quiniela/platform/internal/infra"
)

// runMigrations applies db/migrations from the project root.
func runMigrations(dsn string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return infra.RunMigrations(dsn, filepath.Join(findProjectRoot(), "db", "migrations"), logger)
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
