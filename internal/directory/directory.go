package directory

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/mindhaven/backend/internal/models"
)

// DefaultProfileImage is the deterministic avatar served for any user who
// never uploaded one ("mystery person" gravatar).
const DefaultProfileImage = "https://www.gravatar.com/avatar/00000000000000000000000000000000?d=mp&f=y"

// Profile is the directory's view of a user: just what the feed needs to
// render an author line.
type Profile struct {
	Name  string
	Image string
}

// Directory resolves user ids to display profiles. It is the only thing
// the feed subsystem knows about users.
type Directory struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Lookup returns the profile for a user id. The second return value is
// false when no such user exists; callers are expected to fall back to an
// anonymous rendering in that case.
func (d *Directory) Lookup(userID string) (Profile, bool) {
	var user models.User
	err := d.db.Select("name", "profile_image").First(&user, "id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("directory lookup for %s failed: %v", userID, err)
		}
		return Profile{}, false
	}

	image := user.ProfileImage
	if image == "" {
		image = DefaultProfileImage
	}
	return Profile{Name: user.Name, Image: image}, true
}
