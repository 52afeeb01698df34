package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"camerpulse/internal/di"
)

func main() {
	app, cleanup, err := di.InitializeMediaApp()
	if err != nil {
		log.Fatalf("Failed to initialize media server: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:        ":" + app.Config.Server.MediaServicePort,
		Handler:     app.Server,
		ReadTimeout: time.Duration(app.Config.Server.ReadTimeout) * time.Second,
	}
	go func() {
		log.Printf("🚀 Media HTTP Server starting on port %s", app.Config.Server.MediaServicePort)
		log.Printf("📂 Serving files at: %s{fileId}", app.Config.Server.MediaBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	log.Println("Media server stopped")
}
