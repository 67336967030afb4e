// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"logsight/api/analytics"
	"logsight/api/database"
	"logsight/api/handlers"
	"logsight/api/middleware"
	"logsight/api/store"
)

// newLogStore selects the record store backend. ClickHouse is the
// default; LOG_BACKEND=postgres switches to PostgreSQL and
// LOG_BACKEND=memory runs without a database (local development only).
// The returned func closes the underlying connection.
func newLogStore() (store.LogStore, func(), error) {
	switch os.Getenv("LOG_BACKEND") {
	case "postgres":
		dbClient, err := database.NewPostgresDB()
		if err != nil {
			return nil, nil, err
		}
		pgStore, err := store.NewPostgresStore(dbClient)
		if err != nil {
			dbClient.Close()
			return nil, nil, err
		}
		return pgStore, dbClient.Close, nil
	case "memory":
		log.Println("Using in-memory log store. Data will not survive a restart.")
		return store.NewMemoryStore(), func() {}, nil
	}

	chClient, err := database.NewClickHouseDB()
	if err != nil {
		return nil, nil, err
	}
	chStore, err := store.NewClickHouseStore(chClient)
	if err != nil {
		chClient.Close()
		return nil, nil, err
	}
	return chStore, chClient.Close, nil
}

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logStore, closeStore, err := newLogStore()
	if err != nil {
		log.Fatalf("Failed to initialize log store: %v", err)
	}
	defer closeStore()

	analyticsService := analytics.NewService(logStore)

	logHandlers := handlers.NewLogHandlers(logStore)
	sessionHandlers := handlers.NewSessionHandlers(logStore, analyticsService)
	statsHandlers := handlers.NewStatsHandlers(analyticsService)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		logs := api.Group("/logs")
		{
			logs.POST("", logHandlers.CreateLog)
			logs.GET("", logHandlers.ListLogs)
			logs.POST("/seed", logHandlers.SeedLogs)
			logs.GET("/sessions", sessionHandlers.ListSessions)
			logs.GET("/path/:sessionId", sessionHandlers.GetSessionPath)
			logs.GET("/stats", statsHandlers.GetStats)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Logsight API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Logsight API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
