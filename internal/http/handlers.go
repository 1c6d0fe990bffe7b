package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mindhaven/backend/internal/feed"
	"github.com/mindhaven/backend/internal/identity"
	"github.com/mindhaven/backend/internal/store"
	"github.com/mindhaven/backend/internal/ws"
)

// --- Configuration Constants ---
const (
	rateLimitRPS   = 1.0 / 3.0 // 1 post every 3 seconds per IP
	rateLimitBurst = 1
)

// --- Structs for request binding ---
type CreatePostInput struct {
	UserID      string   `json:"user_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	IsAnonymous bool     `json:"is_anonymous"`
	Images      []string `json:"images"`
}
type LikeInput struct {
	UserID string `json:"user_id" binding:"required"`
}
type AddCommentInput struct {
	PostID  string `json:"post_id" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// WsMessage is the envelope pushed to feed subscribers.
type WsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// --- Rate Limiter ---
type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.RWMutex
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		mu:       sync.RWMutex{},
		rps:      r,
		burst:    b,
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
			return
		}
		c.Next()
	}
}

// --- Handlers ---
type Env struct {
	Feed     *feed.Service
	Identity *identity.Store
	Hub      *ws.Hub
}

func (e *Env) GetFeed(c *gin.Context) {
	posts, err := e.Feed.GetFeed()
	if err != nil {
		log.Printf("Error fetching feed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (e *Env) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	postID, err := e.Feed.CreatePost(feed.CreatePostInput{
		UserID:      input.UserID,
		Title:       input.Title,
		Content:     input.Content,
		IsAnonymous: input.IsAnonymous,
		Images:      input.Images,
	})
	if err != nil {
		e.respondError(c, err)
		return
	}

	e.broadcastMessage(WsMessage{Type: "new_post", Data: gin.H{"post_id": postID}})
	c.JSON(http.StatusCreated, gin.H{"post_id": postID})
}

func (e *Env) TogglePostLike(c *gin.Context) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	postID := c.Param("post_id")
	liked, err := e.Feed.TogglePostLike(postID, input.UserID)
	if err != nil {
		e.respondError(c, err)
		return
	}

	e.broadcastMessage(WsMessage{Type: "post_like", Data: gin.H{"post_id": postID, "user_id": input.UserID, "liked": liked}})
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (e *Env) DeletePost(c *gin.Context) {
	postID := c.Param("post_id")
	if err := e.Feed.DeletePost(postID); err != nil {
		e.respondError(c, err)
		return
	}

	e.broadcastMessage(WsMessage{Type: "post_deleted", Data: gin.H{"post_id": postID}})
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (e *Env) AddComment(c *gin.Context) {
	var input AddCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	comment, err := e.Feed.AddComment(feed.AddCommentInput{
		PostID:  input.PostID,
		UserID:  input.UserID,
		Content: input.Content,
	})
	if err != nil {
		e.respondError(c, err)
		return
	}

	e.broadcastMessage(WsMessage{Type: "new_comment", Data: gin.H{"post_id": comment.PostID, "comment_id": comment.ID}})
	c.JSON(http.StatusCreated, gin.H{"comment_id": comment.ID, "comment": comment})
}

func (e *Env) ListComments(c *gin.Context) {
	comments, err := e.Feed.ListComments(c.Param("post_id"))
	if err != nil {
		e.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (e *Env) ToggleCommentLike(c *gin.Context) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	commentID := c.Param("comment_id")
	liked, likeCount, err := e.Feed.ToggleCommentLike(commentID, input.UserID)
	if err != nil {
		e.respondError(c, err)
		return
	}

	e.broadcastMessage(WsMessage{Type: "comment_like", Data: gin.H{"comment_id": commentID, "user_id": input.UserID, "liked": liked, "like_count": likeCount}})
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": likeCount})
}

func (e *Env) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	user, err := e.Identity.Register(input.Name, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		log.Printf("Error registering user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
}

func (e *Env) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := e.Identity.Verify(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Error verifying credentials: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"profile_image": user.ProfileImage,
	}})
}

// respondError maps service errors onto the taxonomy: validation → 400,
// missing document → 404, everything else → 500.
func (e *Env) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Store failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// broadcastMessage pushes a feed event to connected websocket clients.
func (e *Env) broadcastMessage(msg WsMessage) {
	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling WS message: %v", err)
		return
	}
	e.Hub.Broadcast <- jsonMsg
}
