package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"chat-relay/auth"
	"chat-relay/httpapi"
	"chat-relay/moderation"
	"chat-relay/realtime"
	"chat-relay/repositories"
	"chat-relay/services"
	"chat-relay/workers"
)

//go:embed censored/*
var censoredFolder embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Databases
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & Services
	userRepository := repositories.NewUserRepository(db)
	groupRepository := repositories.NewGroupRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	searchIndex := repositories.NewSearchIndex(blugeWriter, log)

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	otpStore := auth.NewOTPStore(config.OTPDuration)
	authService := services.NewAuthService(userRepository, tokens, otpStore, services.LogMailer{Log: log})
	groupService := services.NewGroupService(groupRepository, userRepository)
	messageService := services.NewMessageService(messageRepository, groupRepository, searchIndex)

	// 4. Real-time delivery core
	moderator, err := newModerator(config.CharReplacement, log)
	if err != nil {
		return err
	}
	registry := realtime.NewRegistry()
	router := realtime.NewRouter(log, registry, userRepository, groupRepository, messageRepository).
		WithSearchIndex(searchIndex).
		WithModerator(moderator)
	socket := realtime.NewHandler(log, router, tokens, config.ConnectionBufferSize)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewBadgerGCWorker(db, config.GCInterval, log),
		workers.NewPresenceReporter(registry, config.PresenceReportInterval, log),
	)
	go sup.Run(ctx)

	// 7. HTTP server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr: address,
		Handler: httpapi.NewRouter(tokens,
			httpapi.NewAuthHandler(log, authService),
			httpapi.NewGroupHandler(log, groupService),
			httpapi.NewMessageHandler(log, messageService),
			socket),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// newModerator loads the embedded censored word lists and builds the
// Aho-Corasick automaton once at startup.
func newModerator(replacement string, log *slog.Logger) (*moderation.Moderator, error) {
	replacementRune, err := characterRune(replacement)
	if err != nil {
		return nil, err
	}

	entries, err := censoredFolder.ReadDir("censored")
	if err != nil {
		return nil, err
	}
	var words []string
	for _, entry := range entries {
		data, err := censoredFolder.ReadFile("censored/" + entry.Name())
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(data), "\n") {
			if word := strings.TrimSpace(line); word != "" {
				words = append(words, word)
			}
		}
	}
	log.Info(fmt.Sprintf("%d censored words loaded", len(words)))

	return moderation.NewModerator(words, replacementRune)
}
