// Command backfill runs the one-time tags maintenance sweep: every note
// missing a tags field gets an empty one. Safe to rerun; a second pass
// touches nothing.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"noteeasy/internal/config"
	"noteeasy/internal/db"
	"noteeasy/internal/notes"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := notes.NewRepo(database)
	patched, err := repo.BackfillTags(ctx)
	if err != nil {
		log.Fatalf("backfill failed: %v", err)
	}

	logger.Info("backfill complete", "notesPatched", patched)
}
