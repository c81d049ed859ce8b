package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"priorities/config"
	"priorities/deck"
	"priorities/game"
	httpserver "priorities/http"
	"priorities/store"
	"priorities/ws"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the multiplayer API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(config.Load(v))
		},
	}

	flags := cmd.Flags()
	flags.String("bind", "0.0.0.0", "address to listen on")
	flags.Uint16("port", 8080, "port to listen on")
	flags.String("db-path", "./priorities.db", "path to the SQLite database")
	flags.Duration("heartbeat-interval", 30*time.Second, "expected client heartbeat interval")
	if err := v.BindPFlags(flags); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}

	return cmd
}

func runServer(cfg *config.Config) error {
	log.Println("Starting Priorities server...")
	log.Printf("Configuration loaded - Listen addr: %s, DB path: %s", cfg.Addr(), cfg.DBPath)

	// Initialize database
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Println("Database initialized successfully")

	// Initialize services
	d := deck.New()
	rooms := game.NewRooms(db)
	rounds := game.NewRounds(db, d)
	wsManager := ws.NewManager(db)

	// Initialize HTTP server
	server := httpserver.NewServer(rooms, rounds, wsManager, db, cfg.HeartbeatInterval)
	srv := server.GetHTTPServer(cfg.Addr())

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on http://%s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
