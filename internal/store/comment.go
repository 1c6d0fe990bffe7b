package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mindhaven/backend/internal/directory"
	"github.com/mindhaven/backend/internal/models"
)

// CommentStore owns the comments table and its like rows.
type CommentStore struct {
	db  *gorm.DB
	dir *directory.Directory
}

func NewCommentStore(db *gorm.DB, dir *directory.Directory) *CommentStore {
	return &CommentStore{db: db, dir: dir}
}

// Create inserts a comment with a snapshot of the commenter's profile.
// The post id is recorded as given: a comment on a deleted (or invented)
// post is legal, matching the cross-store independence of the design — no
// transaction ever spans posts and comments.
func (s *CommentStore) Create(postID uint, userID, content string) (*models.Comment, error) {
	authorName := AnonymousName
	var authorImage *string

	if profile, ok := s.dir.Lookup(userID); ok {
		authorName = profile.Name
		img := profile.Image
		authorImage = &img
	}

	comment := models.Comment{
		PostID:      postID,
		UserID:      userID,
		Content:     content,
		AuthorName:  authorName,
		AuthorImage: authorImage,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForPost returns a post's comments, most recent first.
func (s *CommentStore) ListForPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("post_id = ?", postID).
		Order("created_at DESC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountForPost is the count-only query the feed uses to hydrate
// comment_count; comment counts are never denormalized onto posts.
func (s *CommentStore) CountForPost(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// ToggleLike flips userID's like on a comment and returns the new state
// together with the like count as it stands after the mutation. The count
// is read back inside the same transaction: callers render it directly,
// so it must reflect this write, not an eventually-consistent view.
func (s *CommentStore) ToggleLike(commentID uint, userID string) (bool, int, error) {
	var (
		liked     bool
		likeCount int
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = false
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Comment{}).Select("like_count").
			Where("id = ?", commentID).Scan(&likeCount).Error
	})
	return liked, likeCount, err
}

// LikesFor is a read-only projection of a comment's like state. A missing
// comment projects as empty rather than an error.
func (s *CommentStore) LikesFor(commentID uint) (int, []models.CommentLike, error) {
	var comment models.Comment
	err := s.db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	return comment.LikeCount, comment.Likes, nil
}
