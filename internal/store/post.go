package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mindhaven/backend/internal/directory"
	"github.com/mindhaven/backend/internal/models"
)

// PostStore owns the posts table and its like rows.
type PostStore struct {
	db  *gorm.DB
	dir *directory.Directory
}

func NewPostStore(db *gorm.DB, dir *directory.Directory) *PostStore {
	return &PostStore{db: db, dir: dir}
}

// Create inserts a new post with a zeroed like set and a snapshot of the
// author's current profile. An anonymous post (or one whose author the
// directory cannot resolve) stores "Anonymous" and no image.
func (s *PostStore) Create(userID, title, content string, isAnonymous bool, images []string) (*models.Post, error) {
	authorName := AnonymousName
	var authorImage *string

	if profile, ok := s.dir.Lookup(userID); ok {
		authorName = profile.Name
		img := profile.Image
		authorImage = &img
	}
	if isAnonymous {
		authorName = AnonymousName
		authorImage = nil
	}

	post := models.Post{
		UserID:      userID,
		Title:       title,
		Content:     content,
		IsAnonymous: isAnonymous,
		AuthorName:  authorName,
		AuthorImage: authorImage,
		Images:      images,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns all posts with their likes preloaded. With newestFirst the
// order is created_at descending; equal timestamps keep insertion order.
func (s *PostStore) List(newestFirst bool) ([]models.Post, error) {
	order := "id ASC"
	if newestFirst {
		order = "created_at DESC, id ASC"
	}

	var posts []models.Post
	err := s.db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order(order).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a single post with its likes.
func (s *PostStore) Get(postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ToggleLike flips userID's like on a post and returns the new state.
// The existence check, the like-row mutation and the counter delta all run
// in one transaction so the counter can never drift from the set; the
// composite primary key on post_likes rules out a double insert even if
// two toggles for the same user race.
func (s *PostStore) ToggleLike(postID uint, userID string) (bool, error) {
	var liked bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		}

		if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	return liked, err
}

// Delete removes a post and its like rows. Deleting a post that is
// already gone is a no-op. Comments are left in place on purpose: they
// reference the post by id only and nothing cascades.
func (s *PostStore) Delete(postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}
