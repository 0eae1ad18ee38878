package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteeasy/internal/auth"
	"noteeasy/internal/config"
	"noteeasy/internal/db"
	"noteeasy/internal/identity"
	mcpserver "noteeasy/internal/mcp"
	"noteeasy/internal/notes"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	cfg := config.Load()

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	tokens := identity.NewTokenManager(cfg.TokenSecret, cfg.TokenExpiry)

	noteRepo := notes.NewRepo(database)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure note indexes", "error", err)
	}
	noteSvc := notes.NewService(noteRepo)
	noteHandler := notes.NewHandler(noteSvc, logger)

	userRepo := auth.NewRepo(database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure user indexes", "error", err)
	}
	authSvc := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authSvc, logger)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(noteSvc)

	// HTTP router
	mux := http.NewServeMux()

	// Auth endpoints
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Note endpoints
	mux.HandleFunc("POST /notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /notes", noteHandler.ListNotes)
	mux.HandleFunc("GET /notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("GET /notes/{id}/history", noteHandler.GetHistory)
	mux.HandleFunc("PUT /notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /notes/{id}", noteHandler.DeleteNote)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      identity.Middleware(tokens)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Error("mongo disconnect error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}
