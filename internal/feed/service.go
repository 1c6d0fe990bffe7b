package feed

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mindhaven/backend/internal/models"
	"github.com/mindhaven/backend/internal/store"
)

// ErrValidation marks a request that failed before touching the stores.
// Handlers map it to a 400.
var ErrValidation = errors.New("validation failed")

// Service is a stateless orchestrator over the post and comment stores.
// Everything it serves is re-read from the stores; it holds no state of
// its own.
type Service struct {
	posts    *store.PostStore
	comments *store.CommentStore
}

func NewService(posts *store.PostStore, comments *store.CommentStore) *Service {
	return &Service{posts: posts, comments: comments}
}

// LikeView is one entry of a like set as clients see it.
type LikeView struct {
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// PostView is a feed item ready for rendering. The author fields come
// from the post's creation-time snapshot, never from a live directory
// lookup; comment_count is the only field computed fresh on every read.
type PostView struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	IsAnonymous  bool       `json:"is_anonymous"`
	AuthorName   string     `json:"author_name"`
	Image        *string    `json:"image"`
	LikeCount    int        `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	CreatedAt    string     `json:"created_at"`
	Likes        []LikeView `json:"likes"`
	Images       []string   `json:"images,omitempty"`
}

// CommentView is a comment ready for rendering, with the commenter's
// creation-time snapshot in user_name/user_image.
type CommentView struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	PostID    string     `json:"post_id"`
	Content   string     `json:"content"`
	CreatedAt string     `json:"created_at"`
	UserName  string     `json:"user_name"`
	UserImage *string    `json:"user_image"`
	LikeCount int        `json:"like_count"`
	Likes     []LikeView `json:"likes"`
}

// CreatePostInput carries the fields of a create-post request.
type CreatePostInput struct {
	UserID      string
	Title       string
	Content     string
	IsAnonymous bool
	Images      []string
}

// AddCommentInput carries the fields of an add-comment request.
type AddCommentInput struct {
	PostID  string
	UserID  string
	Content string
}

// GetFeed returns every post, newest first, with a live comment count
// attached to each.
func (s *Service) GetFeed() ([]PostView, error) {
	posts, err := s.posts.List(true)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		count, err := s.comments.CountForPost(posts[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, postView(&posts[i], count))
	}
	return views, nil
}

// CreatePost validates the input and delegates to the post store,
// returning the new post's id.
func (s *Service) CreatePost(in CreatePostInput) (string, error) {
	if in.UserID == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if in.Title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Content == "" {
		return "", fmt.Errorf("%w: content is required", ErrValidation)
	}

	post, err := s.posts.Create(in.UserID, in.Title, in.Content, in.IsAnonymous, in.Images)
	if err != nil {
		return "", err
	}
	return formatID(post.ID), nil
}

// TogglePostLike flips a user's like on a post.
func (s *Service) TogglePostLike(postID, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return false, err
	}
	return s.posts.ToggleLike(id, userID)
}

// DeletePost removes a post; deleting an absent post is a no-op.
func (s *Service) DeletePost(postID string) error {
	id, err := parseID(postID, "post")
	if err != nil {
		return err
	}
	return s.posts.Delete(id)
}

// AddComment validates the input, delegates to the comment store and
// returns the created comment's view, snapshot included. Whether the post
// exists is not checked.
func (s *Service) AddComment(in AddCommentInput) (*CommentView, error) {
	if in.PostID == "" || in.UserID == "" || in.Content == "" {
		return nil, fmt.Errorf("%w: post_id, user_id and content are required", ErrValidation)
	}
	postID, err := parseID(in.PostID, "post")
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(postID, in.UserID, in.Content)
	if err != nil {
		return nil, err
	}
	view := commentView(comment)
	return &view, nil
}

// ListComments returns a post's comments, most recent first.
func (s *Service) ListComments(postID string) ([]CommentView, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListForPost(id)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	return views, nil
}

// ToggleCommentLike flips a user's like on a comment and returns the
// resulting state with the post-mutation like count.
func (s *Service) ToggleCommentLike(commentID, userID string) (bool, int, error) {
	if userID == "" {
		return false, 0, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	id, err := parseID(commentID, "comment")
	if err != nil {
		return false, 0, err
	}
	return s.comments.ToggleLike(id, userID)
}

func postView(post *models.Post, commentCount int64) PostView {
	likes := make([]LikeView, 0, len(post.Likes))
	for _, like := range post.Likes {
		likes = append(likes, LikeView{
			UserID:    like.UserID,
			CreatedAt: formatTime(like.CreatedAt),
		})
	}
	return PostView{
		ID:           formatID(post.ID),
		UserID:       post.UserID,
		Title:        post.Title,
		Content:      post.Content,
		IsAnonymous:  post.IsAnonymous,
		AuthorName:   post.AuthorName,
		Image:        post.AuthorImage,
		LikeCount:    post.LikeCount,
		CommentCount: commentCount,
		CreatedAt:    formatTime(post.CreatedAt),
		Likes:        likes,
		Images:       post.Images,
	}
}

func commentView(comment *models.Comment) CommentView {
	likes := make([]LikeView, 0, len(comment.Likes))
	for _, like := range comment.Likes {
		likes = append(likes, LikeView{
			UserID:    like.UserID,
			CreatedAt: formatTime(like.CreatedAt),
		})
	}
	return CommentView{
		ID:        formatID(comment.ID),
		UserID:    comment.UserID,
		PostID:    formatID(comment.PostID),
		Content:   comment.Content,
		CreatedAt: formatTime(comment.CreatedAt),
		UserName:  comment.AuthorName,
		UserImage: comment.AuthorImage,
		LikeCount: comment.LikeCount,
		Likes:     likes,
	}
}

// Identifiers are opaque strings at the boundary; the numeric form is an
// implementation detail of the stores.
func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(raw, kind string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s id", ErrValidation, kind)
	}
	return uint(id), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
