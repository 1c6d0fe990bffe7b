package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mindhaven/backend/internal/feed"
	"github.com/mindhaven/backend/internal/identity"
	"github.com/mindhaven/backend/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, feedSvc *feed.Service, idStore *identity.Store, hub *ws.Hub) {

	// --- Dependencies ---
	env := &Env{Feed: feedSvc, Identity: idStore, Hub: hub}

	// --- Middleware ---

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	// CORS Middleware
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*" // Default to allow all for local dev
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// A wrong verb on a known route must answer 405, not 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Invalid request method"})
	})

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				if v.Allow() {
					// An idle limiter has refilled; forget the visitor.
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	// --- API Routes ---

	router.GET("/blog-posts", env.GetFeed)
	router.POST("/blog-posts", RateLimitMiddleware(limiter), env.CreatePost)
	router.POST("/blog-posts/:post_id/like", env.TogglePostLike)
	router.DELETE("/blog-posts/:post_id", env.DeletePost)
	router.GET("/blog-posts/:post_id/comments", env.ListComments)

	router.POST("/comments", env.AddComment)
	router.POST("/comments/:comment_id/like", env.ToggleCommentLike)

	router.POST("/auth/register", env.Register)
	router.POST("/auth/login", env.Login)

	// --- WebSocket Route ---

	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})
}
