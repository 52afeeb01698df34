package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"camerpulse/internal/dbsql"
	"camerpulse/internal/di"
)

func main() {
	log.Println("Starting Chat Service...")

	app, cleanup, err := di.InitializeChatApp()
	if err != nil {
		log.Fatalf("Failed to initialize chat service: %v", err)
	}
	defer cleanup()

	if err := app.DB.AutoMigrate(dbsql.ChatModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migration completed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.Janitor.Run(ctx)

	// gRPC carries health checks for the orchestrator only.
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(loggingUnaryInterceptor),
		grpc.StreamInterceptor(loggingStreamInterceptor),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("chat", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+app.Config.Server.ChatGRPCPort)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", app.Config.Server.ChatGRPCPort, err)
	}
	go func() {
		log.Printf("Chat health gRPC running on port %s", app.Config.Server.ChatGRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server stopped: %v", err)
		}
	}()

	// No WriteTimeout: it would cut long-lived websocket connections.
	httpServer := &http.Server{
		Addr:        ":" + app.Config.Server.ChatServicePort,
		Handler:     app.Router,
		ReadTimeout: time.Duration(app.Config.Server.ReadTimeout) * time.Second,
	}
	go func() {
		log.Printf("Chat Service running on port %s", app.Config.Server.ChatServicePort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down Chat Service...")

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	grpcServer.GracefulStop()

	log.Println("Chat Service stopped")
}

func loggingUnaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	duration := time.Since(start)
	if err != nil {
		log.Printf("✗ %s failed (%v): %v", info.FullMethod, duration, err)
	} else {
		log.Printf("✓ %s completed (%v)", info.FullMethod, duration)
	}
	return resp, err
}

func loggingStreamInterceptor(srv interface{}, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	log.Printf("⟷ %s stream started", info.FullMethod)
	err := handler(srv, stream)
	if err != nil {
		log.Printf("✗ %s stream ended with error: %v", info.FullMethod, err)
	} else {
		log.Printf("✓ %s stream completed", info.FullMethod)
	}
	return err
}
