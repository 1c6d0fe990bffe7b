package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mindhaven/backend/internal/db"
	"github.com/mindhaven/backend/internal/directory"
	"github.com/mindhaven/backend/internal/feed"
	routes "github.com/mindhaven/backend/internal/http"
	"github.com/mindhaven/backend/internal/identity"
	"github.com/mindhaven/backend/internal/models"
	"github.com/mindhaven/backend/internal/store"
	"github.com/mindhaven/backend/internal/ws"
)

func main() {
	// Load .env first; in production env vars are set directly and the
	// file is absent, which is fine.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	// 1. Initialize Database
	database, err := db.Init()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 2. Run Migrations
	log.Println("Running database migrations...")
	if err := database.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	// 3. Wire the feed subsystem
	dir := directory.New(database)
	posts := store.NewPostStore(database, dir)
	comments := store.NewCommentStore(database, dir)
	feedSvc := feed.NewService(posts, comments)
	idStore := identity.NewStore(database)

	// 4. Initialize WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()

	// 5. Initialize Gin Router
	router := gin.Default()

	// 6. Setup Routes
	routes.SetupRoutes(router, feedSvc, idStore, hub)

	// 7. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
