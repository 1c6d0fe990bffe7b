package store

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindhaven/backend/internal/directory"
	"github.com/mindhaven/backend/internal/models"
)

// newTestDB opens an in-memory SQLite database. The pool is capped at a
// single connection: every pooled connection to ":memory:" would
// otherwise see its own empty database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, profileImage string) *models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()),
		Password:     "irrelevant",
		ProfileImage: profileImage,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newStores(t *testing.T) (*gorm.DB, *PostStore, *CommentStore) {
	t.Helper()
	db := newTestDB(t)
	dir := directory.New(db)
	return db, NewPostStore(db, dir), NewCommentStore(db, dir)
}
