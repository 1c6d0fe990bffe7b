package models

import (
	"time"
)

// User is an account in the community. Credentials live here but are
// only ever touched by the identity package.
type User struct {
	ID           string    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a single blog entry on the community feed.
//
// AuthorName and AuthorImage are a snapshot of the author's profile taken
// when the post was created; they are never refreshed, and an anonymous
// post stores "Anonymous" and a nil image no matter who wrote it.
// LikeCount is denormalized and must always equal the number of PostLike
// rows for the post; every mutation updates both inside one transaction.
type Post struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      string     `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"not null" json:"content"`
	IsAnonymous bool       `gorm:"not null;default:false" json:"is_anonymous"`
	AuthorName  string     `gorm:"not null" json:"author_name"`
	AuthorImage *string    `json:"author_image"`
	LikeCount   int        `gorm:"not null;default:0" json:"like_count"`
	Images      []string   `gorm:"serializer:json" json:"images,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Likes       []PostLike `gorm:"foreignKey:PostID" json:"likes"`
}

// PostLike records that a user currently likes a post. The composite
// primary key makes a second like by the same user impossible.
type PostLike struct {
	PostID    uint      `gorm:"primarykey" json:"post_id"`
	UserID    string    `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment belongs to a post by id only; there is no foreign key and the
// post is allowed to be gone (or to never have existed). Comments have no
// anonymity option, but the author snapshot rule is the same as Post's.
type Comment struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	PostID      uint          `gorm:"not null;index" json:"post_id"`
	UserID      string        `gorm:"not null;index" json:"user_id"`
	Content     string        `gorm:"not null" json:"content"`
	AuthorName  string        `gorm:"not null" json:"author_name"`
	AuthorImage *string       `json:"author_image"`
	LikeCount   int           `gorm:"not null;default:0" json:"like_count"`
	CreatedAt   time.Time     `json:"created_at"`
	Likes       []CommentLike `gorm:"foreignKey:CommentID" json:"likes"`
}

// CommentLike mirrors PostLike for comments.
type CommentLike struct {
	CommentID uint      `gorm:"primarykey" json:"comment_id"`
	UserID    string    `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
