package directory

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindhaven/backend/internal/models"
)

func newTestDirectory(t *testing.T) (*gorm.DB, *Directory) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db, New(db)
}

func TestLookup(t *testing.T) {
	db, dir := newTestDirectory(t)

	user := models.User{
		ID:           uuid.New().String(),
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "irrelevant",
		ProfileImage: "https://img.example.com/alice.png",
	}
	require.NoError(t, db.Create(&user).Error)

	profile, ok := dir.Lookup(user.ID)
	require.True(t, ok)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "https://img.example.com/alice.png", profile.Image)
}

func TestLookupDefaultsAvatar(t *testing.T) {
	db, dir := newTestDirectory(t)

	user := models.User{
		ID:       uuid.New().String(),
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)

	profile, ok := dir.Lookup(user.ID)
	require.True(t, ok)
	assert.Equal(t, DefaultProfileImage, profile.Image)
}

func TestLookupMissingUser(t *testing.T) {
	_, dir := newTestDirectory(t)

	_, ok := dir.Lookup(uuid.New().String())
	assert.False(t, ok)
}
