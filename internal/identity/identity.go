package identity

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mindhaven/backend/internal/directory"
	"github.com/mindhaven/backend/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store handles account registration and credential verification.
// It deliberately stops there: sessions and tokens are the transport's
// problem, not this package's.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Register creates a new user with a bcrypt-hashed password and the
// default profile image.
func (s *Store) Register(name, email, password string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		ProfileImage: directory.DefaultProfileImage,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Verify checks an email/password pair and returns the matching user.
func (s *Store) Verify(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
